package source

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"betedge/engine/internal/client"
	"betedge/engine/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// SampleOdds are the bundled anytime home run prices used when no odds page is set
var SampleOdds = map[string]float64{
	"aaron judge":   280,
	"mookie betts":  320,
	"pete alonso":   300,
	"shohei ohtani": 250,
}

// Selectors locate odds rows on a scraped page
type Selectors struct {
	Row   string
	Name  string
	Price string
}

// OddsAdapter scrapes player prices from an HTML odds page
type OddsAdapter struct {
	client    *client.Client
	pageURL   string
	selectors Selectors
}

// NewOddsAdapter creates a new odds adapter. An empty pageURL serves SampleOdds.
func NewOddsAdapter(c *client.Client, pageURL string, sel Selectors) *OddsAdapter {
	return &OddsAdapter{client: c, pageURL: strings.TrimSpace(pageURL), selectors: sel}
}

func (a *OddsAdapter) Name() string { return Odds }

// Fetch implements Adapter
func (a *OddsAdapter) Fetch(ctx context.Context, scope Scope) (models.Batch, error) {
	set := newEntitySet(scope.Entities)

	if a.pageURL == "" {
		batch := models.Batch{
			Source:   Odds,
			Records:  set.keep(sampleRecords()),
			Warnings: []string{"ODDS_PAGE_URL not set, using bundled sample odds"},
		}
		return batch, nil
	}

	body, err := a.client.Get(ctx, "odds_page", a.pageURL, nil)
	if err != nil {
		return models.Batch{Source: Odds}, fmt.Errorf("failed to fetch odds page: %w", err)
	}

	lines, err := ParseOddsPage(body, a.selectors)
	if err != nil {
		return models.Batch{Source: Odds}, err
	}
	log.Debug().Int("lines", len(lines)).Msg("Scraped odds page")

	records := make([]models.SourceRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, l.ToRecord(Odds, models.ProvenanceScraped))
	}
	return models.Batch{Source: Odds, Records: set.keep(records)}, nil
}

// ParseOddsPage extracts player prices. Rows without a name or a valid American
// price are skipped; a page with no usable row is an error.
func ParseOddsPage(body []byte, sel Selectors) ([]models.OddsLine, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse odds page: %w", err)
	}

	var lines []models.OddsLine
	doc.Find(sel.Row).Each(func(_ int, row *goquery.Selection) {
		name := strings.Join(strings.Fields(row.Find(sel.Name).First().Text()), " ")
		if name == "" {
			return
		}
		price, ok := models.ParseAmericanOdds(row.Find(sel.Price).First().Text())
		if !ok {
			return
		}
		lines = append(lines, models.OddsLine{Player: name, Price: price})
	})

	if len(lines) == 0 {
		return nil, fmt.Errorf("no odds rows matched selector %q", sel.Row)
	}
	return lines, nil
}

func sampleRecords() []models.SourceRecord {
	names := make([]string, 0, len(SampleOdds))
	for name := range SampleOdds {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]models.SourceRecord, 0, len(names))
	for _, name := range names {
		line := models.OddsLine{Player: name, Price: SampleOdds[name]}
		records = append(records, line.ToRecord("odds-sample", models.ProvenanceSimulated))
	}
	return records
}

func init() {
	Register(Odds, func(deps Deps) (Adapter, error) {
		cfg := deps.Config
		return NewOddsAdapter(deps.Client, cfg.OddsPageURL, Selectors{
			Row:   cfg.OddsRowSelector,
			Name:  cfg.OddsNameSelector,
			Price: cfg.OddsPriceSelector,
		}), nil
	})
}
