package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// InteractionTokenTTL is how long Discord accepts follow-ups for an interaction.
const InteractionTokenTTL = 15 * time.Minute

// Sequencer sends follow-up messages of one interaction strictly in order. The
// first message waits delay after the acknowledgement was handed over; message N
// waits delay after the request for N-1 returned. A sequence stops when the
// interaction token expires, when its context is cancelled or on the first failed send.
type Sequencer struct {
	client Client
	delay  time.Duration
	logger *slog.Logger
	base   context.Context
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewSequencer ties every background sequence to base, so cancelling base on
// shutdown stops sequences that are still running.
func NewSequencer(base context.Context, client Client, delay time.Duration, logger *slog.Logger) *Sequencer {
	return &Sequencer{client: client, delay: delay, logger: logger, base: base, now: time.Now}
}

// TokenDeadline is the moment the interaction's follow-up token stops working.
func TokenDeadline(i *discordgo.Interaction, fallback time.Time) time.Time {
	issued, err := discordgo.SnowflakeTimestamp(i.ID)
	if err != nil || issued.IsZero() {
		issued = fallback
	}
	return issued.Add(InteractionTokenTTL)
}

// Run sends messages in order and returns how many were delivered.
func (s *Sequencer) Run(ctx context.Context, i *discordgo.Interaction, messages []*discordgo.WebhookParams) (int, error) {
	ctx, cancel := context.WithDeadline(ctx, TokenDeadline(i, s.now()))
	defer cancel()

	for n, msg := range messages {
		if err := s.pause(ctx); err != nil {
			return n, fmt.Errorf("follow-up %d of %d not sent: %w", n+1, len(messages), err)
		}
		if _, err := s.client.Followup(ctx, i, msg); err != nil {
			return n, fmt.Errorf("follow-up %d of %d failed: %w", n+1, len(messages), err)
		}
	}
	return len(messages), nil
}

// pause holds the next send for delay unless ctx ends first.
func (s *Sequencer) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Go runs the sequence in the background; failures are logged.
func (s *Sequencer) Go(i *discordgo.Interaction, messages []*discordgo.WebhookParams) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sent, err := s.Run(s.base, i, messages)
		if err != nil {
			s.logger.Warn("follow-up sequence stopped",
				slog.String("interaction_id", i.ID),
				slog.Int("sent", sent),
				slog.Int("total", len(messages)),
				slog.Any("error", err),
			)
		}
	}()
}

// Later computes the follow-ups in the background and then sends them like Go.
// produce runs under the same token deadline as the sends.
func (s *Sequencer) Later(i *discordgo.Interaction, produce func(ctx context.Context) []*discordgo.WebhookParams) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithDeadline(s.base, TokenDeadline(i, s.now()))
		defer cancel()
		messages := produce(ctx)
		if sent, err := s.Run(ctx, i, messages); err != nil {
			s.logger.Warn("follow-up sequence stopped",
				slog.String("interaction_id", i.ID),
				slog.Int("sent", sent),
				slog.Int("total", len(messages)),
				slog.Any("error", err),
			)
		}
	}()
}

// Wait blocks until every background sequence has finished.
func (s *Sequencer) Wait() {
	s.wg.Wait()
}

// EphemeralFollowups wraps plain text pages as ephemeral follow-up messages.
func EphemeralFollowups(pages []string) []*discordgo.WebhookParams {
	out := make([]*discordgo.WebhookParams, 0, len(pages))
	for _, p := range pages {
		out = append(out, &discordgo.WebhookParams{
			Content:         p,
			Flags:           EphemeralFlag,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})
	}
	return out
}
