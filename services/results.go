package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Dosada05/forza-race-organizer/models"
)

// pointsTable: 1st=25 ... 10th=1.
var pointsTable = [...]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// CalculatePoints returns the championship points for a finishing position, 0 outside the top ten.
func CalculatePoints(position int) int {
	if position < 1 || position > len(pointsTable) {
		return 0
	}
	return pointsTable[position-1]
}

var resultLine = regexp.MustCompile(`^(\d+)\.\s*<@!?(\d+)>`)

// ParseResults reads one "N. <@user>" line per finisher. Blank lines are skipped.
// The first line that does not match fails the whole text with a *ResultsFormatError.
func ParseResults(text string) ([]models.Result, error) {
	var results []models.Result
	seenUser := make(map[string]int)
	seenPos := make(map[int]int)

	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lineNo := n + 1
		m := resultLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &ResultsFormatError{Line: lineNo, Text: line, Reason: `expected "N. @user"`}
		}
		pos, err := strconv.Atoi(m[1])
		if err != nil || pos < 1 {
			return nil, &ResultsFormatError{Line: lineNo, Text: line, Reason: "position must be a positive number"}
		}
		if prev, ok := seenUser[m[2]]; ok {
			return nil, &ResultsFormatError{Line: lineNo, Text: line, Reason: "driver already listed on line " + strconv.Itoa(prev)}
		}
		if prev, ok := seenPos[pos]; ok {
			return nil, &ResultsFormatError{Line: lineNo, Text: line, Reason: "position already used on line " + strconv.Itoa(prev)}
		}
		seenUser[m[2]] = lineNo
		seenPos[pos] = lineNo
		results = append(results, models.Result{UserID: m[2], Position: pos, Points: CalculatePoints(pos)})
	}
	if len(results) == 0 {
		return nil, &ResultsFormatError{Line: 1, Text: strings.TrimSpace(text), Reason: "no finishers listed"}
	}
	return results, nil
}
