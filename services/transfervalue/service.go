// Package transfervalue attaches market values to the players of a scraped
// dataset, with a json cache in front of the value listing.
package transfervalue

import (
	"bytes"
	"context"
	"fmt"
	"footstats/lib/dataset"
	"footstats/lib/scraper"
	"footstats/services/linker"
	"log/slog"
	"slices"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("footstats.services.transfervalue")

const DefaultUrl = "https://www.transfermarkt.com/premier-league/marktwerte/wettbewerb/GB1"

// ValueColumn holds the market value in millions of euros.
const ValueColumn = "Value_M€"

// Source lists the players of a market value page.
type Source interface {
	Entries(ctx context.Context) ([]Entry, error)
}

// PageSource reads one or more listing pages over http.
type PageSource struct {
	client *resty.Client
	urls   []string
}

func NewPageSource(opts scraper.ClientOptions, urls ...string) (PageSource, error) {
	if opts.TracerName == "" {
		opts.TracerName = "footstats.services.transfervalue/http"
	}
	if len(urls) == 0 {
		urls = []string{DefaultUrl}
	}
	client, err := scraper.NewClient(opts)
	if err != nil {
		return PageSource{}, err
	}
	return PageSource{client: client, urls: urls}, nil
}

func (s PageSource) Entries(ctx context.Context) ([]Entry, error) {
	var out []Entry
	for _, url := range s.urls {
		body, err := scraper.Get(ctx, s.client, url)
		if err != nil {
			return nil, err
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", url, err)
		}
		entries := ParseEntries(ctx, doc)
		if len(entries) == 0 {
			slog.WarnContext(ctx, "no players found on value page", "url", url)
		}
		out = append(out, entries...)
	}
	return out, nil
}

// Lookup returns the value of every player in `players`. Players missing
// from `cache` are looked up on `source` and added to it, players that
// cannot be linked to any entry are cached as nil. `source` is not used
// when every player is cached.
func Lookup(ctx context.Context, players []string, cache Cache, source Source) (map[string]*float64, error) {
	ctx, span := tracer.Start(ctx, "Lookup")
	defer span.End()

	missing := cache.Missing(players)
	span.SetAttributes(
		attribute.Int("players", len(players)),
		attribute.Int("uncached", len(missing)),
	)

	if len(missing) > 0 {
		entries, err := source.Entries(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("list market values: %w", err)
		}

		names := make([]string, len(entries))
		values := make(map[string]*float64, len(entries))
		for i, e := range entries {
			names[i] = e.Name
			if _, ok := values[e.Name]; !ok {
				values[e.Name] = e.Value
			}
		}

		links := linker.Lookup(linker.LinkNames(missing, names))
		found := 0
		for _, player := range missing {
			link, ok := links[player]
			if !ok {
				cache[player] = nil
				continue
			}
			cache[player] = values[link.Candidate]
			found++
			slog.DebugContext(ctx, "linked player",
				"player", player,
				"listed_as", link.Candidate,
				"similarity", link.Similarity,
			)
		}
		slog.InfoContext(ctx, "looked up market values",
			"uncached", len(missing),
			"found", found,
		)
	}

	out := make(map[string]*float64, len(players))
	for _, p := range players {
		out[p] = cache[p]
	}
	return out, nil
}

type RunParams struct {
	// minimum minutes a player must exceed to be valued
	MinMinutes     float64
	PlayerColumn   string
	TeamColumn     string
	PositionColumn string
	MinutesColumn  string
}

func DefaultRunParams() RunParams {
	return RunParams{
		MinMinutes:     900,
		PlayerColumn:   "Player",
		TeamColumn:     "Team",
		PositionColumn: "Position",
		MinutesColumn:  "Minutes",
	}
}

// Run keeps the players of `players` above the minutes threshold and
// returns Player, Team, Position, Minutes and their value.
func Run(ctx context.Context, players dataset.Table, params RunParams, cache Cache, source Source) (dataset.Table, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	columns := []string{params.PlayerColumn, params.TeamColumn, params.PositionColumn, params.MinutesColumn}
	for _, c := range columns {
		if players.Index(c) < 0 {
			return dataset.Table{}, fmt.Errorf("input has no column '%s'", c)
		}
	}

	minutesIdx := players.Index(params.MinutesColumn)
	kept := players.Filter(func(row []dataset.Cell) bool {
		minutes, ok := dataset.ParseNumber(row[minutesIdx])
		return ok && minutes > params.MinMinutes
	})

	var names []string
	for i := 0; i < kept.Len(); i++ {
		name := kept.Get(i, params.PlayerColumn).Text
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	values, err := Lookup(ctx, names, cache, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dataset.Table{}, err
	}

	rows := make([][]dataset.Cell, kept.Len())
	for i := 0; i < kept.Len(); i++ {
		row := make([]dataset.Cell, 0, len(columns)+1)
		for _, c := range columns {
			row = append(row, kept.Get(i, c))
		}
		value := dataset.NA
		if v := values[kept.Get(i, params.PlayerColumn).Text]; v != nil {
			value = dataset.Value(dataset.FormatNumber(*v))
		}
		rows[i] = append(row, value)
	}
	return dataset.New(append(columns, ValueColumn), rows)
}
