package ui

import (
	"fmt"
	"strconv"
	"strings"

	"betedge/engine/internal/models"
	"betedge/engine/internal/notify"
	"betedge/engine/internal/rating"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ImputedMark follows values filled in by the merge layer in debug output
const ImputedMark = "~"

// LeaderboardOptions controls RenderLeaderboard
type LeaderboardOptions struct {
	// Debug shows every metric and marks imputed values
	Debug bool
	// Subtitle is printed under the title, e.g. the run date and mode
	Subtitle string
}

// RenderLeaderboard renders the rows of t as a ranked table. Without debug only the
// domain's highlight metrics are shown.
func RenderLeaderboard(domain *rating.Domain, t *models.Table, opts LeaderboardOptions) string {
	title := Styles.Title.Render(domain.Title)
	if opts.Subtitle != "" {
		title = lipgloss.JoinVertical(lipgloss.Left,
			Styles.Title.UnsetMarginBottom().Render(domain.Title),
			Styles.Muted.MarginBottom(1).Render(opts.Subtitle),
		)
	}

	if t.Len() == 0 {
		return title + "\n" + RenderEmpty("No players matched the current filters.")
	}

	metrics := domain.Highlights
	if opts.Debug {
		metrics = t.Metrics
	}

	headers := []string{"#", models.NameColumn, models.TeamColumn}
	showOpponent := hasAttr(t, models.AttrOpponent)
	if showOpponent {
		headers = append(headers, models.AttrOpponent)
	}
	headers = append(headers, metrics...)
	headers = append(headers, models.RatingColumn)

	rows := make([][]string, 0, t.Len())
	for i, row := range t.Rows {
		cells := []string{strconv.Itoa(i + 1), row.Entity.Name, row.Entity.Team}
		if showOpponent {
			cells = append(cells, row.Entity.Attr(models.AttrOpponent))
		}
		for _, name := range metrics {
			cells = append(cells, metricCell(row, name, opts.Debug))
		}
		cells = append(cells, strconv.FormatFloat(row.Rating, 'f', 2, 64))
		rows = append(rows, cells)
	}

	ratingCol := len(headers) - 1
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return Styles.Header
			case r < 0 || r >= len(rows):
				return Styles.Cell
			case c == ratingCol:
				return ratingStyle(t.Rows[r].Rating)
			case opts.Debug && strings.HasSuffix(rows[r][c], ImputedMark):
				return Styles.Imputed
			default:
				return Styles.Cell
			}
		})

	out := title + "\n" + tbl.String()
	if opts.Debug {
		out += "\n" + Styles.Muted.Render(ImputedMark+" imputed value")
	}
	return out
}

// RenderEmpty renders the empty state box
func RenderEmpty(msg string) string {
	return Styles.EmptyBox.Render(msg)
}

func metricCell(row models.Row, name string, debug bool) string {
	cell, ok := row.Metrics[name]
	if !ok {
		return "-"
	}
	s := notify.FormatMetric(name, cell.Value)
	if debug && cell.Imputed() {
		s += ImputedMark
	}
	return s
}

func ratingStyle(r float64) lipgloss.Style {
	switch {
	case r >= 7:
		return Styles.High
	case r >= 5:
		return Styles.Mid
	default:
		return Styles.Low
	}
}

func hasAttr(t *models.Table, attr string) bool {
	for _, a := range t.Attrs {
		if a == attr {
			return true
		}
	}
	return false
}

// RenderSummary renders the one-line run summary printed under the leaderboard
func RenderSummary(rated, shown, imputed, warnings int) string {
	return Styles.Muted.Render(fmt.Sprintf("%d rated, %d shown, %d imputed cells, %d warnings", rated, shown, imputed, warnings))
}
