package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
)

const (
	ticketsRoot        = "tickets"
	ticketCountersRoot = "ticket_counters"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketClosed   = errors.New("ticket already closed")
	ErrTicketConflict = errors.New("ticket number already in use")
)

type TicketRepository interface {
	NextTicketNumber(ctx context.Context, guildID string) (int, error)
	Create(ctx context.Context, t *models.Ticket) error
	Get(ctx context.Context, guildID string, number int) (*models.Ticket, error)
	Update(ctx context.Context, t *models.Ticket) error
	Close(ctx context.Context, guildID string, number int, by models.TicketActor) (*models.Ticket, error)
	ListByGuild(ctx context.Context, guildID string) ([]*models.Ticket, error)
}

type documentTicketRepository struct {
	store  docstore.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewDocumentTicketRepository(store docstore.Store, logger *slog.Logger) TicketRepository {
	return &documentTicketRepository{store: store, logger: logger, now: time.Now}
}

func ticketPath(guildID string, number int) (string, error) {
	return docstore.Join(ticketsRoot, guildID, strconv.Itoa(number))
}

// NextTicketNumber increments ticket_counters/{guild} atomically and returns the new value.
func (r *documentTicketRepository) NextTicketNumber(ctx context.Context, guildID string) (int, error) {
	path, err := docstore.Join(ticketCountersRoot, guildID)
	if err != nil {
		return 0, err
	}
	var next int
	err = r.store.Transact(ctx, path, func(current json.RawMessage) (any, error) {
		last := 0
		if len(current) > 0 && string(current) != "null" {
			if err := json.Unmarshal(current, &last); err != nil {
				return nil, fmt.Errorf("ticket counter for guild %s is corrupt: %w", guildID, err)
			}
		}
		next = last + 1
		return next, nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Create stores a new open ticket. A zero TicketNumber is allocated from the guild counter.
func (r *documentTicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	if t.GuildID == "" {
		return errors.New("ticket guild is required")
	}
	if t.TicketNumber == 0 {
		n, err := r.NextTicketNumber(ctx, t.GuildID)
		if err != nil {
			return err
		}
		t.TicketNumber = n
	}
	path, err := ticketPath(t.GuildID, t.TicketNumber)
	if err != nil {
		return err
	}
	t.Status = models.TicketOpen
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now().UTC()
	}
	t.ClosedBy = nil
	t.ClosedAt = nil
	return insertDocument(ctx, r.store, path, t, ErrTicketConflict)
}

func (r *documentTicketRepository) Get(ctx context.Context, guildID string, number int) (*models.Ticket, error) {
	path, err := ticketPath(guildID, number)
	if err != nil {
		return nil, err
	}
	var t models.Ticket
	if err := getDocument(ctx, r.store, path, &t, ErrTicketNotFound); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update replaces a ticket that already exists.
func (r *documentTicketRepository) Update(ctx context.Context, t *models.Ticket) error {
	path, err := ticketPath(t.GuildID, t.TicketNumber)
	if err != nil {
		return err
	}
	_, err = mutateDocument(ctx, r.store, path, ErrTicketNotFound, func(doc *models.Ticket) error {
		*doc = *t
		return nil
	})
	return err
}

// Close moves an open ticket to closed. A ticket is closed at most once.
func (r *documentTicketRepository) Close(ctx context.Context, guildID string, number int, by models.TicketActor) (*models.Ticket, error) {
	path, err := ticketPath(guildID, number)
	if err != nil {
		return nil, err
	}
	closedAt := r.now().UTC()
	return mutateDocument(ctx, r.store, path, ErrTicketNotFound, func(t *models.Ticket) error {
		if !t.IsOpen() {
			return ErrTicketClosed
		}
		t.Status = models.TicketClosed
		t.ClosedBy = &by
		t.ClosedAt = &closedAt
		return nil
	})
}

func (r *documentTicketRepository) ListByGuild(ctx context.Context, guildID string) ([]*models.Ticket, error) {
	root, err := docstore.Join(ticketsRoot, guildID)
	if err != nil {
		return nil, err
	}
	tickets, _, err := listDocuments[models.Ticket](ctx, r.store, root, func(doc docstore.Document, err error) {
		r.logger.WarnContext(ctx, "skipping undecodable ticket", slog.String("path", doc.Path), slog.Any("error", err))
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tickets, func(a, b *models.Ticket) int { return a.TicketNumber - b.TicketNumber })
	return tickets, nil
}
