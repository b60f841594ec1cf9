package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/realtime"
	"github.com/Dosada05/forza-race-organizer/repositories"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Paginate slices an in-memory listing. page < 1 means the first page, limit is
// clamped to [1, MaxPageLimit] with DefaultPageLimit for zero.
func Paginate[T any](items []T, page, limit int) models.Page[T] {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	out := make([]T, end-start)
	copy(out, items[start:end])

	return models.Page[T]{
		Items:      out,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

type RaceService struct {
	repo     repositories.RaceRepository
	notifier Notifier
	logger   *slog.Logger
}

func NewRaceService(repo repositories.RaceRepository, notifier Notifier, logger *slog.Logger) *RaceService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &RaceService{repo: repo, notifier: notifier, logger: logger}
}

func normalizeRace(race *models.Race) {
	race.Name = strings.TrimSpace(race.Name)
	race.Track = strings.TrimSpace(race.Track)
	race.TrackConfig = strings.TrimSpace(race.TrackConfig)
}

func (s *RaceService) Create(ctx context.Context, race *models.Race, guildID, userID string) (*models.Race, error) {
	normalizeRace(race)
	race.ID = ""
	race.CreatedBy = userID
	if guildID != "" {
		race.GuildID = guildID
	}
	if err := validateStruct(race); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, race); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "race created", slog.String("race_id", race.ID), slog.String("guild_id", race.GuildID))
	s.notifier.NotifyGuild(race.GuildID, realtime.RaceCreated, race)
	return race, nil
}

func (s *RaceService) Get(ctx context.Context, id string) (*models.Race, error) {
	race, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return race, nil
}

// List fetches every race and paginates in memory; guildID narrows the listing when set.
func (s *RaceService) List(ctx context.Context, guildID string, page, limit int) (models.Page[*models.Race], error) {
	races, err := s.repo.List(ctx)
	if err != nil {
		return models.Page[*models.Race]{}, handleRepositoryError(err)
	}
	if guildID != "" {
		filtered := races[:0]
		for _, r := range races {
			if r.GuildID == guildID {
				filtered = append(filtered, r)
			}
		}
		races = filtered
	}
	return Paginate(races, page, limit), nil
}

// Update replaces the race wholesale.
func (s *RaceService) Update(ctx context.Context, id string, race *models.Race) (*models.Race, error) {
	normalizeRace(race)
	race.ID = id
	if err := validateStruct(race); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, race); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.notifier.NotifyGuild(race.GuildID, realtime.RaceUpdated, race)
	return race, nil
}

func (s *RaceService) Delete(ctx context.Context, id string) error {
	race, err := s.repo.Get(ctx, id)
	if err != nil {
		return handleRepositoryError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "race deleted", slog.String("race_id", id))
	s.notifier.NotifyGuild(race.GuildID, realtime.RaceDeleted, map[string]string{"id": id})
	return nil
}
