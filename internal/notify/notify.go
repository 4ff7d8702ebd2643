// Package notify posts the leaderboard of a run to a Discord-style webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"betedge/engine/internal/client"
	"betedge/engine/internal/metrics"
	"betedge/engine/internal/models"
	"betedge/engine/internal/rating"

	"github.com/rs/zerolog/log"
)

// MaxContent is the longest message body a Discord webhook accepts
const MaxContent = 2000

// ErrNoWebhook is returned when no webhook URL is configured
var ErrNoWebhook = errors.New("webhook URL not configured")

// Message is the webhook payload
type Message struct {
	Content string `json:"content"`
}

// Notifier posts leaderboards to a webhook
type Notifier struct {
	client *client.Client
	url    string
	top    int
}

// NewNotifier creates a new notifier. top limits the posted rows; 0 posts every row.
func NewNotifier(c *client.Client, webhookURL string, top int) *Notifier {
	return &Notifier{client: c, url: strings.TrimSpace(webhookURL), top: top}
}

// Post formats the leading rows of the table and sends them
func (n *Notifier) Post(ctx context.Context, domain *rating.Domain, table *models.Table) error {
	if n.url == "" {
		metrics.RecordNotification("skipped")
		return ErrNoWebhook
	}
	if table.Len() == 0 {
		metrics.RecordNotification("skipped")
		log.Info().Str("domain", domain.Key).Msg("Leaderboard is empty, nothing to post")
		return nil
	}

	msg := Message{Content: Format(domain, table, n.top)}
	if err := n.client.PostJSON(ctx, "webhook", n.url, msg); err != nil {
		metrics.RecordNotification("error")
		metrics.RecordError("notify", "webhook")
		return fmt.Errorf("failed to post leaderboard: %w", err)
	}

	metrics.RecordNotification("success")
	log.Info().
		Str("domain", domain.Key).
		Int("rows", min(table.Len(), n.limit(table))).
		Msg("Leaderboard posted")
	return nil
}

func (n *Notifier) limit(table *models.Table) int {
	if n.top <= 0 {
		return table.Len()
	}
	return n.top
}

// Format renders the leaderboard as plain markdown text: one line per row with
// the player, team, the domain's highlight metrics and the rating. Lines that
// would push the message past MaxContent are dropped.
func Format(domain *rating.Domain, table *models.Table, top int) string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(domain.Title)
	b.WriteString(" Picks**\n")

	rows := table.Rows
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	for _, row := range rows {
		line := formatRow(domain, row)
		if b.Len()+len(line) > MaxContent {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

func formatRow(domain *rating.Domain, row models.Row) string {
	parts := []string{fmt.Sprintf("- **%s**", row.Entity.Name)}
	if row.Entity.Team != "" {
		parts[0] += " (" + row.Entity.Team + ")"
	}
	for _, name := range domain.Highlights {
		v, ok := row.Metric(name)
		if !ok {
			continue
		}
		parts = append(parts, name+": "+FormatMetric(name, v))
	}
	parts = append(parts, "Rating: "+strconv.FormatFloat(row.Rating, 'f', 2, 64))
	return strings.Join(parts, " | ") + "\n"
}

// FormatMetric renders a metric value for display. Odds carry an explicit sign.
func FormatMetric(name string, v float64) string {
	if name == models.MetricOdds {
		if v > 0 {
			return "+" + strconv.FormatFloat(v, 'f', 0, 64)
		}
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
