package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/storage"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePNG  = "image/png"
)

// ExportLinks are the public URLs of an uploaded results export.
type ExportLinks struct {
	EventID     string `json:"eventId"`
	WorkbookURL string `json:"workbookUrl"`
	ChartURL    string `json:"chartUrl"`
}

type ExportService struct {
	events   *EventService
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewExportService accepts a nil uploader; Publish then fails with ErrExportsDisabled
// while the workbook and chart downloads keep working.
func NewExportService(events *EventService, uploader storage.FileUploader, logger *slog.Logger) *ExportService {
	return &ExportService{events: events, uploader: uploader, logger: logger}
}

func driverName(e *models.Event, userID string) (name, xbox, car string) {
	if i := e.ParticipantIndex(userID); i >= 0 {
		p := e.Participants[i]
		return p.Username, p.XboxNickname, p.CarChoice
	}
	return userID, "", ""
}

// ResultsWorkbook builds a workbook with a Results sheet and a Participants sheet.
func ResultsWorkbook(e *models.Event) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const results, participants = "Results", "Participants"
	if err := f.SetSheetName("Sheet1", results); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(participants); err != nil {
		return nil, err
	}

	rows := [][]any{{"Position", "Driver", "Discord ID", "Xbox", "Car", "Points"}}
	for _, r := range e.Results {
		name, xbox, car := driverName(e, r.UserID)
		rows = append(rows, []any{r.Position, name, r.UserID, xbox, car, r.Points})
	}
	if err := writeRows(f, results, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"#", "Username", "Discord ID", "Xbox", "Twitch", "Car", "Registered"}}
	for i, p := range e.Participants {
		rows = append(rows, []any{i + 1, p.Username, p.ID, p.XboxNickname, p.TwitchUsername, p.CarChoice, p.RegisteredAt.UTC().Format("2006-01-02 15:04")})
	}
	if err := writeRows(f, participants, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

var (
	chartBackground = drawing.ColorFromHex("2b2d31")
	chartBar        = drawing.ColorFromHex("5865f2")
	chartText       = drawing.ColorFromHex("f2f3f5")
)

// StandingsChart renders points per driver as a PNG bar chart.
func StandingsChart(e *models.Event) ([]byte, error) {
	bars := make([]chart.Value, 0, len(e.Results))
	top := 0
	for _, r := range e.Results {
		name, _, _ := driverName(e, r.UserID)
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%d. %s", r.Position, name),
			Value: float64(r.Points),
			Style: chart.Style{FillColor: chartBar, StrokeColor: chartBar},
		})
		top = max(top, r.Points)
	}
	if top == 0 {
		return renderPlaceholder("No points scored yet")
	}

	graph := chart.BarChart{
		Title:      e.Title,
		TitleStyle: chart.Style{FontColor: chartText},
		Width:      max(640, 100*len(bars)+120),
		Height:     480,
		BarWidth:   50,
		BarSpacing: 30,
		Background: chart.Style{FillColor: chartBackground, Padding: chart.Box{Top: 40, Bottom: 20}},
		Canvas:     chart.Style{FillColor: chartBackground},
		XAxis:      chart.Style{FontColor: chartText, TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:  "Points",
			Style: chart.Style{FontColor: chartText},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render standings chart: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: chartBackground},
		Canvas:     chart.Style{FillColor: chartBackground},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) Workbook(ctx context.Context, guildID, eventID string) ([]byte, *models.Event, error) {
	e, err := s.events.Get(ctx, guildID, eventID)
	if err != nil {
		return nil, nil, err
	}
	data, err := ResultsWorkbook(e)
	return data, e, err
}

func (s *ExportService) Chart(ctx context.Context, guildID, eventID string) ([]byte, *models.Event, error) {
	e, err := s.events.Get(ctx, guildID, eventID)
	if err != nil {
		return nil, nil, err
	}
	data, err := StandingsChart(e)
	return data, e, err
}

// Publish uploads the workbook and chart of a completed event.
func (s *ExportService) Publish(ctx context.Context, guildID, eventID string) (*ExportLinks, error) {
	if s.uploader == nil {
		return nil, ErrExportsDisabled
	}
	e, err := s.events.Get(ctx, guildID, eventID)
	if err != nil {
		return nil, err
	}
	if !e.Completed {
		return nil, &ValidationError{Fields: map[string]string{"event": "has no results yet"}}
	}

	workbook, err := ResultsWorkbook(e)
	if err != nil {
		return nil, err
	}
	png, err := StandingsChart(e)
	if err != nil {
		return nil, err
	}

	prefix := path.Join("exports", e.GuildID, e.EventID)
	wb, err := s.uploader.Upload(ctx, prefix+"/results.xlsx", ContentTypeXLSX, bytes.NewReader(workbook))
	if err != nil {
		return nil, err
	}
	ch, err := s.uploader.Upload(ctx, prefix+"/standings.png", ContentTypePNG, bytes.NewReader(png))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "results exported", slog.String("event_id", e.EventID), slog.String("workbook", wb.Location))
	return &ExportLinks{EventID: e.EventID, WorkbookURL: wb.Location, ChartURL: ch.Location}, nil
}
