package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/forza-race-organizer/config"
	"github.com/Dosada05/forza-race-organizer/db"
	"github.com/Dosada05/forza-race-organizer/discord"
	_ "github.com/Dosada05/forza-race-organizer/docs"
	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/handlers"
	"github.com/Dosada05/forza-race-organizer/interactions"
	"github.com/Dosada05/forza-race-organizer/metrics"
	"github.com/Dosada05/forza-race-organizer/realtime"
	"github.com/Dosada05/forza-race-organizer/repositories"
	api "github.com/Dosada05/forza-race-organizer/routes"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/Dosada05/forza-race-organizer/storage"
	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	dbConnectTimeout = 5 * time.Second
	shutdownTimeout  = 15 * time.Second
	metricsNamespace = "forza_organizer"
)

func main() {
	app := &cli.App{
		Name:  "forza-race-organizer",
		Usage: "Discord race organizer bot and Activity API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML configuration file",
				Value:   "config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server and the optional gateway session",
				Action: serve,
			},
			{
				Name:  "register-commands",
				Usage: "overwrite the slash command definitions",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "guild", Usage: "register for one guild instead of globally"},
				},
				Action: registerCommands,
			},
			{
				Name:   "migrate-events",
				Usage:  "backfill guild_id on events created before it was stored",
				Action: migrateEvents,
			},
			{
				Name:   "init-db",
				Usage:  "create the documents table",
				Action: initDB,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// env is what every subcommand needs before doing its own work.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   docstore.Store
	session *discordgo.Session
	client  discord.Client
	metrics *metrics.Prometheus
	close   func()
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Настройка логгера
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	session, err := discord.NewSession(cfg.Discord.BotToken)
	if err != nil {
		closeStore()
		return nil, err
	}
	m := metrics.NewPrometheus(metricsNamespace)

	return &env{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		session: session,
		client:  discord.NewRESTClient(session, cfg.Discord.ApplicationID, logger, m),
		metrics: m,
		close:   closeStore,
	}, nil
}

func openStore(cfg *config.Config, logger *slog.Logger) (docstore.Store, func(), error) {
	if cfg.Database.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory document store, data is lost on restart")
		return docstore.NewMemory(), func() {}, nil
	}

	dbConn, err := db.Connect(cfg.Database.URL, dbConnectTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")

	closeDB := func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}
	return docstore.NewPostgres(dbConn, logger), closeDB, nil
}

// app holds the wired services shared by serve and the maintenance commands.
type app struct {
	events        *services.EventService
	tickets       *services.TicketService
	guilds        *services.GuildService
	logs          *services.LogService
	exports       *services.ExportService
	permissions   *services.PermissionChecker
	races         *services.RaceService
	organizations *services.OrganizationService
}

func wire(ctx context.Context, e *env, notifier services.Notifier) (*app, error) {
	policy, err := repositories.ParseMatchPolicy(e.cfg.Events.MatchPolicy)
	if err != nil {
		return nil, err
	}

	var uploader storage.FileUploader
	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       e.cfg.R2.AccountID,
		AccessKeyID:     e.cfg.R2.AccessKeyID,
		SecretAccessKey: e.cfg.R2.SecretAccessKey,
		BucketName:      e.cfg.R2.BucketName,
		PublicBaseURL:   e.cfg.R2.PublicBaseURL,
	}
	if r2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2, e.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		e.logger.Info("Cloudflare R2 uploader initialized")
	} else {
		e.logger.Info("R2 is not configured, export uploads are disabled")
	}

	// Инициализация репозиториев
	eventRepo := repositories.NewDocumentEventRepository(e.store, e.client, e.logger, repositories.EventRepositoryOptions{
		Policy:   policy,
		IDPrefix: e.cfg.Events.IDPrefix,
	})
	ticketRepo := repositories.NewDocumentTicketRepository(e.store, e.logger)
	raceRepo := repositories.NewDocumentRaceRepository(e.store, e.logger)
	orgRepo := repositories.NewDocumentOrganizationRepository(e.store, e.logger)
	settingsRepo := repositories.NewDocumentGuildSettingsRepository(e.store)
	userRepo := repositories.NewDocumentUserRepository(e.store)

	// Инициализация сервисов
	logs := services.NewLogService(settingsRepo, e.client, e.logger)
	permissions := services.NewPermissionChecker(settingsRepo)
	events := services.NewEventService(eventRepo, userRepo, settingsRepo, e.client, logs, notifier, e.metrics, e.logger, e.cfg.Location())

	return &app{
		events:        events,
		tickets:       services.NewTicketService(ticketRepo, e.client, permissions, logs, e.logger),
		guilds:        services.NewGuildService(settingsRepo, orgRepo, e.client, notifier, e.logger),
		logs:          logs,
		exports:       services.NewExportService(events, uploader, e.logger),
		permissions:   permissions,
		races:         services.NewRaceService(raceRepo, notifier, e.logger),
		organizations: services.NewOrganizationService(orgRepo, notifier),
	}, nil
}

func serve(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()
	logger := e.logger

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if pg, ok := e.store.(*docstore.Postgres); ok {
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	// Инициализация WebSocket Hub
	hub := realtime.NewHub(logger)

	a, err := wire(ctx, e, hub)
	if err != nil {
		return err
	}
	logger.Info("services initialized")

	g, gctx := errgroup.WithContext(ctx)
	sequencer := discord.NewSequencer(gctx, e.client, e.cfg.Events.FollowupDelay, logger)
	router := interactions.NewRouter(interactions.Services{
		Events:      a.events,
		Tickets:     a.tickets,
		Guilds:      a.guilds,
		Logs:        a.logs,
		Exports:     a.exports,
		Permissions: a.permissions,
	}, e.client, sequencer, e.metrics, logger)

	if e.cfg.Discord.GatewayEnabled {
		e.session.AddHandler(router.OnInteractionCreate)
		if err := e.session.Open(); err != nil {
			return fmt.Errorf("failed to open gateway session: %w", err)
		}
		defer e.session.Close()
		logger.Info("gateway session opened")
	}

	publicKey, err := e.cfg.PublicKey()
	if err != nil {
		return err
	}
	auth := services.NewAuthService(services.AuthConfig{
		ClientID:     e.cfg.Discord.ClientID,
		ClientSecret: e.cfg.Discord.ClientSecret,
		RedirectURL:  e.cfg.Discord.RedirectURL,
		JWTSecret:    []byte(e.cfg.Server.JWTSecretKey),
		SessionTTL:   e.cfg.Server.SessionTTL,
	}, nil)

	// Настройка маршрутизатора
	mux := chi.NewRouter()
	api.SetupRoutes(mux, api.Handlers{
		Auth:          handlers.NewAuthHandler(auth, logger),
		Races:         handlers.NewRaceHandler(a.races, a.guilds, logger),
		Organizations: handlers.NewOrganizationHandler(a.organizations, a.guilds, logger),
		Guilds:        handlers.NewGuildHandler(a.guilds, logger),
		Events:        handlers.NewEventHandler(a.events, a.exports, logger),
		Tickets:       handlers.NewTicketHandler(a.tickets, a.guilds, logger),
		Interactions:  handlers.NewInteractionHandler(router, publicKey, logger),
		WebSocket:     handlers.NewWebSocketHandler(hub, e.cfg.Server.AllowedOrigins, logger),
		Metrics:       e.metrics.Handler(),
	}, api.Options{
		Sessions:       auth,
		AllowedOrigins: e.cfg.Server.AllowedOrigins,
		RateLimitRPS:   e.cfg.RateLimit.RPS,
		RateLimitBurst: e.cfg.RateLimit.Burst,
		Logger:         logger,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", e.cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return server.Close()
		}
		logger.Info("server shutdown complete")
		return nil
	})

	err = g.Wait()
	// follow-up sequences are cancelled with gctx, wait for them to unwind
	sequencer.Wait()
	logger.Info("application exited")
	return err
}

func registerCommands(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	guildID := c.String("guild")
	registered, err := e.client.OverwriteCommands(c.Context, guildID, interactions.Definitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	scope := "globally"
	if guildID != "" {
		scope = "for guild " + guildID
	}
	fmt.Printf("Registered %d commands %s\n", len(registered), scope)
	return nil
}

func migrateEvents(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	a, err := wire(c.Context, e, nil)
	if err != nil {
		return err
	}
	n, err := a.events.Migrate(c.Context)
	if err != nil {
		return fmt.Errorf("failed to migrate events: %w", err)
	}
	fmt.Printf("Backfilled guild_id on %d events\n", n)
	return nil
}

func initDB(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	pg, ok := e.store.(*docstore.Postgres)
	if !ok {
		return errors.New("init-db requires STORE_DRIVER=postgres")
	}
	if err := pg.EnsureSchema(c.Context); err != nil {
		return err
	}
	fmt.Println("documents table is ready")
	return nil
}
