package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
)

const eventsRoot = "events"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventConflict     = errors.New("event key already in use")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrInvalidEvent      = errors.New("invalid event")
)

// MatchPolicy decides how FindEvent treats a message that no event lists.
type MatchPolicy string

const (
	// MatchExact only matches events whose message_ids contain the message.
	MatchExact MatchPolicy = "exact"
	// MatchChannelFallback also accepts the globally newest event when it lives in
	// the same channel. Two events sharing a channel can be confused under this policy.
	MatchChannelFallback MatchPolicy = "channel_fallback"
)

func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(s) {
	case "", MatchExact:
		return MatchExact, nil
	case MatchChannelFallback:
		return MatchChannelFallback, nil
	}
	return "", fmt.Errorf("unknown event match policy %q", s)
}

// MessageDeleter removes announcement messages when an event is deleted.
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// GuildResolver maps a channel to the guild that owns it.
type GuildResolver func(ctx context.Context, channelID string) (string, error)

type EventRepository interface {
	FindEvent(ctx context.Context, messageID, channelID string) (*models.Event, error)
	FindEventByID(ctx context.Context, eventID string) (*models.Event, error)
	GetByKey(ctx context.Context, key string) (*models.Event, error)
	CreateEvent(ctx context.Context, guildID, channelID, interactionID string, draft models.EventDraft) (*models.Event, error)
	AddParticipant(ctx context.Context, key string, p models.Participant) (*models.Event, error)
	RemoveParticipant(ctx context.Context, key, userID string) (*models.Event, error)
	UpdateMessageIDs(ctx context.Context, key string, messageIDs ...string) (*models.Event, error)
	UpdateEvent(ctx context.Context, key string, patch models.EventPatch) (*models.Event, error)
	UpdateEventByID(ctx context.Context, eventID string, patch models.EventPatch) (*models.Event, error)
	UpdateResults(ctx context.Context, key string, results []models.Result) (*models.Event, error)
	DeleteEvent(ctx context.Context, key string) (*models.Event, error)
	GetUserEvents(ctx context.Context, userID string) ([]*models.Event, error)
	GetGuildEvents(ctx context.Context, guildID string) ([]*models.Event, error)
	MigrateEvents(ctx context.Context, resolve GuildResolver) (int, error)
}

type EventRepositoryOptions struct {
	Policy   MatchPolicy
	IDPrefix string
}

type documentEventRepository struct {
	store    docstore.Store
	deleter  MessageDeleter
	logger   *slog.Logger
	policy   MatchPolicy
	idPrefix string
	now      func() time.Time
	digits   func() int
}

func NewDocumentEventRepository(store docstore.Store, deleter MessageDeleter, logger *slog.Logger, opts EventRepositoryOptions) EventRepository {
	if opts.Policy == "" {
		opts.Policy = MatchExact
	}
	if opts.IDPrefix == "" {
		opts.IDPrefix = "FH5-"
	}
	return &documentEventRepository{
		store:    store,
		deleter:  deleter,
		logger:   logger,
		policy:   opts.Policy,
		idPrefix: opts.IDPrefix,
		now:      time.Now,
		digits:   func() int { return rand.IntN(1_000_000) },
	}
}

func eventPath(key string) (string, error) {
	return docstore.Join(eventsRoot, key)
}

func (r *documentEventRepository) all(ctx context.Context) ([]*models.Event, error) {
	events, keys, err := listDocuments[models.Event](ctx, r.store, eventsRoot, func(doc docstore.Document, err error) {
		r.logger.WarnContext(ctx, "skipping undecodable event", slog.String("key", doc.Key), slog.Any("error", err))
	})
	if err != nil {
		return nil, err
	}
	for i, e := range events {
		e.Key = keys[i]
	}
	return events, nil
}

func (r *documentEventRepository) FindEvent(ctx context.Context, messageID, channelID string) (*models.Event, error) {
	events, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if messageID != "" && e.HasMessage(messageID) {
			return e, nil
		}
	}
	if r.policy != MatchChannelFallback || channelID == "" || len(events) == 0 {
		return nil, ErrEventNotFound
	}

	newest := events[0]
	for _, e := range events[1:] {
		if e.CreatedAt.After(newest.CreatedAt) {
			newest = e
		}
	}
	if newest.ChannelID != channelID {
		return nil, ErrEventNotFound
	}
	r.logger.WarnContext(ctx, "event matched by channel fallback",
		slog.String("message_id", messageID),
		slog.String("channel_id", channelID),
		slog.String("event_id", newest.EventID),
	)
	return newest, nil
}

func (r *documentEventRepository) FindEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	events, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.EventID == eventID {
			return e, nil
		}
	}
	return nil, ErrEventNotFound
}

func (r *documentEventRepository) GetByKey(ctx context.Context, key string) (*models.Event, error) {
	path, err := eventPath(key)
	if err != nil {
		return nil, err
	}
	var e models.Event
	if err := getDocument(ctx, r.store, path, &e, ErrEventNotFound); err != nil {
		return nil, err
	}
	e.Key = key
	return &e, nil
}

// CreateEvent keys the event by the interaction id, which Discord issues in time
// order, so key order follows creation order. Without one the unix millisecond
// timestamp is used.
func (r *documentEventRepository) CreateEvent(ctx context.Context, guildID, channelID, interactionID string, draft models.EventDraft) (*models.Event, error) {
	if draft.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if draft.MaxParticipants < 0 {
		return nil, fmt.Errorf("%w: max participants must not be negative", ErrInvalidEvent)
	}
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel is required", ErrInvalidEvent)
	}

	now := r.now().UTC()
	key := interactionID
	if key == "" {
		key = strconv.FormatInt(now.UnixMilli(), 10)
	}
	path, err := eventPath(key)
	if err != nil {
		return nil, err
	}

	e := &models.Event{
		EventID:         fmt.Sprintf("%s%06d", r.idPrefix, r.digits()),
		GuildID:         guildID,
		ChannelID:       channelID,
		Title:           draft.Title,
		EventDate:       draft.EventDate,
		MaxParticipants: draft.MaxParticipants,
		RoleID:          draft.RoleID,
		CreatedBy:       draft.CreatedBy,
		CreatedAt:       now,
		MessageIDs:      []string{},
		Participants:    []models.Participant{},
	}
	if err := insertDocument(ctx, r.store, path, e, ErrEventConflict); err != nil {
		return nil, err
	}
	e.Key = key
	return e, nil
}

func (r *documentEventRepository) mutate(ctx context.Context, key string, fn func(e *models.Event) error) (*models.Event, error) {
	path, err := eventPath(key)
	if err != nil {
		return nil, err
	}
	e, err := mutateDocument(ctx, r.store, path, ErrEventNotFound, fn)
	if err != nil {
		return nil, err
	}
	e.Key = key
	return e, nil
}

// AddParticipant does not check max_participants; the cap is shown to members but not enforced.
func (r *documentEventRepository) AddParticipant(ctx context.Context, key string, p models.Participant) (*models.Event, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: participant id is required", ErrInvalidEvent)
	}
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = r.now().UTC()
	}
	return r.mutate(ctx, key, func(e *models.Event) error {
		if e.HasParticipant(p.ID) {
			return ErrAlreadyRegistered
		}
		e.Participants = append(e.Participants, p)
		return nil
	})
}

func (r *documentEventRepository) RemoveParticipant(ctx context.Context, key, userID string) (*models.Event, error) {
	return r.mutate(ctx, key, func(e *models.Event) error {
		i := e.ParticipantIndex(userID)
		if i < 0 {
			return ErrNotRegistered
		}
		e.Participants = slices.Delete(e.Participants, i, i+1)
		return nil
	})
}

// UpdateMessageIDs appends ids that are not yet listed, keeping first-seen order.
func (r *documentEventRepository) UpdateMessageIDs(ctx context.Context, key string, messageIDs ...string) (*models.Event, error) {
	return r.mutate(ctx, key, func(e *models.Event) error {
		e.MessageIDs = appendUnique(e.MessageIDs, messageIDs...)
		return nil
	})
}

func appendUnique(ids []string, more ...string) []string {
	seen := make(map[string]struct{}, len(ids)+len(more))
	out := make([]string, 0, len(ids)+len(more))
	for _, id := range append(slices.Clone(ids), more...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r *documentEventRepository) UpdateEvent(ctx context.Context, key string, patch models.EventPatch) (*models.Event, error) {
	if patch.Title != nil && *patch.Title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidEvent)
	}
	if patch.MaxParticipants != nil && *patch.MaxParticipants < 0 {
		return nil, fmt.Errorf("%w: max participants must not be negative", ErrInvalidEvent)
	}
	return r.mutate(ctx, key, func(e *models.Event) error {
		applyEventPatch(e, patch)
		return nil
	})
}

func applyEventPatch(e *models.Event, patch models.EventPatch) {
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.EventDate != nil {
		e.EventDate = patch.EventDate
	}
	if patch.MaxParticipants != nil {
		e.MaxParticipants = *patch.MaxParticipants
	}
	if patch.RoleID != nil {
		e.RoleID = *patch.RoleID
	}
	if patch.ChannelID != nil {
		e.ChannelID = *patch.ChannelID
	}
	if patch.Published != nil {
		e.Published = *patch.Published
	}
	if patch.Completed != nil {
		e.Completed = *patch.Completed
	}
}

func (r *documentEventRepository) UpdateEventByID(ctx context.Context, eventID string, patch models.EventPatch) (*models.Event, error) {
	e, err := r.FindEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return r.UpdateEvent(ctx, e.Key, patch)
}

// UpdateResults replaces the results and marks the event completed.
func (r *documentEventRepository) UpdateResults(ctx context.Context, key string, results []models.Result) (*models.Event, error) {
	return r.mutate(ctx, key, func(e *models.Event) error {
		e.Results = slices.Clone(results)
		e.Completed = true
		return nil
	})
}

// DeleteEvent removes the event document, then deletes its announcement messages.
// Message deletion failures are logged and otherwise ignored.
func (r *documentEventRepository) DeleteEvent(ctx context.Context, key string) (*models.Event, error) {
	e, err := r.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	path, _ := eventPath(key)
	if err := r.store.Remove(ctx, path); err != nil {
		return nil, fmt.Errorf("failed to delete event %s: %w", e.EventID, err)
	}
	if r.deleter == nil {
		return e, nil
	}
	for _, messageID := range e.MessageIDs {
		if err := r.deleter.DeleteMessage(ctx, e.ChannelID, messageID); err != nil {
			r.logger.WarnContext(ctx, "failed to delete event message",
				slog.String("event_id", e.EventID),
				slog.String("message_id", messageID),
				slog.Any("error", err),
			)
		}
	}
	return e, nil
}

func (r *documentEventRepository) GetUserEvents(ctx context.Context, userID string) ([]*models.Event, error) {
	events, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Event, 0)
	for _, e := range events {
		if e.HasParticipant(userID) {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *documentEventRepository) GetGuildEvents(ctx context.Context, guildID string) ([]*models.Event, error) {
	events, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Event, 0)
	for _, e := range events {
		if e.GuildID == guildID {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(events []*models.Event) {
	slices.SortStableFunc(events, func(a, b *models.Event) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// MigrateEvents fills guild_id on legacy events by resolving their channel.
// Events whose channel cannot be resolved are logged and left as they are.
func (r *documentEventRepository) MigrateEvents(ctx context.Context, resolve GuildResolver) (int, error) {
	events, err := r.all(ctx)
	if err != nil {
		return 0, err
	}
	migrated := 0
	for _, e := range events {
		if e.GuildID != "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return migrated, err
		}
		guildID, err := resolve(ctx, e.ChannelID)
		if err != nil || guildID == "" {
			r.logger.WarnContext(ctx, "cannot resolve guild for legacy event",
				slog.String("key", e.Key),
				slog.String("channel_id", e.ChannelID),
				slog.Any("error", err),
			)
			continue
		}
		changed := false
		_, err = r.mutate(ctx, e.Key, func(doc *models.Event) error {
			if doc.GuildID != "" {
				return nil
			}
			doc.GuildID = guildID
			changed = true
			return nil
		})
		if err != nil {
			return migrated, fmt.Errorf("failed to migrate event %s: %w", e.Key, err)
		}
		if changed {
			migrated++
		}
	}
	return migrated, nil
}
