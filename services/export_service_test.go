package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (u *memoryUploader) Upload(_ context.Context, key, _ string, r io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func completedEvent() *models.Event {
	return &models.Event{
		EventID: "FH5-123456",
		GuildID: "g1",
		Title:   "Sunday GT",
		Participants: []models.Participant{
			{ID: "111", Username: "alpha", XboxNickname: "Alpha"},
			{ID: "222", Username: "bravo", XboxNickname: "Bravo", CarChoice: "Supra"},
		},
		Results: []models.Result{
			{UserID: "111", Position: 1, Points: 25},
			{UserID: "222", Position: 2, Points: 18},
			{UserID: "333", Position: 3, Points: 15},
		},
		Completed: true,
	}
}

func TestResultsWorkbook(t *testing.T) {
	data, err := ResultsWorkbook(completedEvent())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Position", "Driver", "Discord ID", "Xbox", "Car", "Points"}, rows[0])
	assert.Equal(t, []string{"2", "bravo", "222", "Bravo", "Supra", "18"}, rows[2])
	assert.Equal(t, "333", rows[3][1], "unknown drivers fall back to their id")

	participants, err := f.GetRows("Participants")
	require.NoError(t, err)
	assert.Len(t, participants, 3)
}

func TestStandingsChart(t *testing.T) {
	data, err := StandingsChart(completedEvent())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	single := completedEvent()
	single.Results = single.Results[:1]
	data, err = StandingsChart(single)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	data, err = StandingsChart(&models.Event{Title: "Empty"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestExportService_Publish(t *testing.T) {
	env := newEventEnv(t)
	ctx := context.Background()
	eventID := env.createEvent(t, "")

	disabled := NewExportService(env.svc, nil, testLogger)
	_, err := disabled.Publish(ctx, "g1", eventID)
	assert.ErrorIs(t, err, ErrExportsDisabled)

	uploader := &memoryUploader{}
	exports := NewExportService(env.svc, uploader, testLogger)
	_, err = exports.Publish(ctx, "g1", eventID)
	assert.ErrorIs(t, err, ErrValidationFailed, "events without results cannot be exported")

	_, err = env.events.UpdateResults(ctx, "1000", []models.Result{{UserID: "111", Position: 1, Points: 25}})
	require.NoError(t, err)

	links, err := exports.Publish(ctx, "g1", eventID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/exports/g1/"+eventID+"/results.xlsx", links.WorkbookURL)
	assert.Equal(t, "https://cdn.test/exports/g1/"+eventID+"/standings.png", links.ChartURL)
	assert.Len(t, uploader.objects, 2)
}
