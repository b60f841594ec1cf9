package discord

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/Dosada05/forza-race-organizer/discord/mocks"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const discordEpochMs = 1420070400000

func snowflakeAt(t time.Time) string {
	return strconv.FormatInt((t.UnixMilli()-discordEpochMs)<<22, 10)
}

func TestTokenDeadline(t *testing.T) {
	issued := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	got := TokenDeadline(&discordgo.Interaction{ID: snowflakeAt(issued)}, time.Time{})
	assert.WithinDuration(t, issued.Add(InteractionTokenTTL), got, time.Millisecond)

	fallback := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	got = TokenDeadline(&discordgo.Interaction{ID: "not-a-snowflake"}, fallback)
	assert.Equal(t, fallback.Add(InteractionTokenTTL), got)
}

func TestSequencer_SendsInOrderWithDelay(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	seq := NewSequencer(context.Background(), client, 20*time.Millisecond, slog.New(slog.DiscardHandler))
	i := &discordgo.Interaction{ID: snowflakeAt(time.Now())}

	var sent []string
	var stamps []time.Time
	record := func(_ context.Context, _ *discordgo.Interaction, p *discordgo.WebhookParams) (*discordgo.Message, error) {
		sent = append(sent, p.Content)
		stamps = append(stamps, time.Now())
		return &discordgo.Message{}, nil
	}
	gomock.InOrder(
		client.EXPECT().Followup(gomock.Any(), i, gomock.Any()).DoAndReturn(record),
		client.EXPECT().Followup(gomock.Any(), i, gomock.Any()).DoAndReturn(record),
		client.EXPECT().Followup(gomock.Any(), i, gomock.Any()).DoAndReturn(record),
	)

	n, err := seq.Run(context.Background(), i, EphemeralFollowups([]string{"page 1", "page 2", "page 3"}))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"page 1", "page 2", "page 3"}, sent)
	for k := 1; k < len(stamps); k++ {
		assert.GreaterOrEqual(t, stamps[k].Sub(stamps[k-1]), 15*time.Millisecond)
	}
}

func TestSequencer_StopsOnFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	seq := NewSequencer(context.Background(), client, 0, slog.New(slog.DiscardHandler))
	i := &discordgo.Interaction{ID: snowflakeAt(time.Now())}

	gomock.InOrder(
		client.EXPECT().Followup(gomock.Any(), i, gomock.Any()).Return(&discordgo.Message{}, nil),
		client.EXPECT().Followup(gomock.Any(), i, gomock.Any()).Return(nil, errors.New("unknown webhook")),
	)
	n, err := seq.Run(context.Background(), i, EphemeralFollowups([]string{"a", "b", "c"}))
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestSequencer_ExpiredTokenSendsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	seq := NewSequencer(context.Background(), client, 10*time.Millisecond, slog.New(slog.DiscardHandler))
	i := &discordgo.Interaction{ID: snowflakeAt(time.Now().Add(-20 * time.Minute))}

	n, err := seq.Run(context.Background(), i, EphemeralFollowups([]string{"late"}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, n)
}

func TestSequencer_DelayCountsFromEndOfPreviousRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	const delay = 40 * time.Millisecond
	seq := NewSequencer(context.Background(), client, delay, slog.New(slog.DiscardHandler))
	i := &discordgo.Interaction{ID: snowflakeAt(time.Now())}

	var starts, ends []time.Time
	slow := func(_ context.Context, _ *discordgo.Interaction, _ *discordgo.WebhookParams) (*discordgo.Message, error) {
		starts = append(starts, time.Now())
		time.Sleep(60 * time.Millisecond)
		ends = append(ends, time.Now())
		return &discordgo.Message{}, nil
	}
	client.EXPECT().Followup(gomock.Any(), i, gomock.Any()).DoAndReturn(slow).Times(3)

	began := time.Now()
	n, err := seq.Run(context.Background(), i, EphemeralFollowups([]string{"1", "2", "3"}))
	require.NoError(t, err)
	require.Equal(t, 3, n)

	assert.GreaterOrEqual(t, starts[0].Sub(began), delay-5*time.Millisecond, "first follow-up must wait for the acknowledgement")
	for k := 1; k < len(starts); k++ {
		assert.GreaterOrEqual(t, starts[k].Sub(ends[k-1]), delay-5*time.Millisecond, "gap after follow-up %d", k)
	}
}

func TestSequencer_GoStopsOnShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	base, cancel := context.WithCancel(context.Background())
	seq := NewSequencer(base, client, time.Hour, slog.New(slog.DiscardHandler))
	i := &discordgo.Interaction{ID: snowflakeAt(time.Now())}

	client.EXPECT().Followup(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	seq.Go(i, EphemeralFollowups([]string{"first", "second"}))
	time.Sleep(20 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		seq.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sequence did not stop after shutdown")
	}
}
