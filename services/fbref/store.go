package fbref

import (
	"context"
	"database/sql"
	"fmt"
	"footstats/lib/dataset"
	"footstats/services/fbref/db"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Store persists finished datasets, one run per scrape.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// SaveParams names the columns holding the key of a row, they differ before
// and after the presentation renames.
type SaveParams struct {
	LayoutVersion string
	PlayerColumn  string
	TeamColumn    string
	// defaults to time.Now()
	Time time.Time
}

// Save writes `t` as a new run and returns its id.
func (s Store) Save(ctx context.Context, t dataset.Table, params SaveParams) (string, error) {
	ctx, span := tracer.Start(ctx, "Store.Save")
	defer span.End()

	fail := func(err error) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	playerIdx := t.Index(params.PlayerColumn)
	teamIdx := t.Index(params.TeamColumn)
	if playerIdx < 0 || teamIdx < 0 {
		return fail(fmt.Errorf(
			"save run: key columns '%s' and '%s' are required",
			params.PlayerColumn, params.TeamColumn,
		))
	}

	runId, err := random.String(12)
	if err != nil {
		return fail(err)
	}
	created := params.Time
	if created.IsZero() {
		created = time.Now()
	}
	span.SetAttributes(attribute.String("run_id", runId))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.CreateRun(ctx, db.Run{
		ID:            runId,
		LayoutVersion: params.LayoutVersion,
		CreatedAt:     created.Unix(),
	})
	if err != nil {
		return fail(err)
	}

	columns := t.Columns()
	for i, name := range columns {
		err = txqry.CreateRunColumn(ctx, db.CreateRunColumnParams{
			RunID:    runId,
			Position: int64(i),
			Name:     name,
		})
		if err != nil {
			return fail(err)
		}
	}

	for r := 0; r < t.Len(); r++ {
		row := t.Row(r)
		for i, cell := range row {
			err = txqry.CreatePlayerStat(ctx, db.PlayerStat{
				RunID:    runId,
				RowIndex: int64(r),
				Player:   row[playerIdx].Text,
				Team:     row[teamIdx].Text,
				Stat:     columns[i],
				Value: sql.NullString{
					String: cell.Text,
					Valid:  !cell.Missing,
				},
			})
			if err != nil {
				return fail(err)
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return fail(err)
	}
	return runId, nil
}

// Load rebuilds the table saved as `runId`.
func (s Store) Load(ctx context.Context, runId string) (dataset.Table, error) {
	ctx, span := tracer.Start(ctx, "Store.Load")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runId))

	fail := func(err error) (dataset.Table, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dataset.Table{}, err
	}

	_, err := s.qry.GetRun(ctx, runId)
	if err != nil {
		return fail(fmt.Errorf("get run %s: %w", runId, err))
	}
	columns, err := s.qry.GetRunColumns(ctx, runId)
	if err != nil {
		return fail(err)
	}
	stats, err := s.qry.GetPlayerStats(ctx, runId)
	if err != nil {
		return fail(err)
	}

	positions := make(map[string]int, len(columns))
	for i, c := range columns {
		positions[c] = i
	}

	var rows [][]dataset.Cell
	for _, stat := range stats {
		for int64(len(rows)) <= stat.RowIndex {
			row := make([]dataset.Cell, len(columns))
			for i := range row {
				row[i] = dataset.NA
			}
			rows = append(rows, row)
		}
		pos, ok := positions[stat.Stat]
		if !ok {
			return fail(fmt.Errorf("run %s: stat '%s' has no column", runId, stat.Stat))
		}
		if stat.Value.Valid {
			rows[stat.RowIndex][pos] = dataset.Value(stat.Value.String)
		}
	}

	return dataset.New(columns, rows)
}

func (s Store) Runs(ctx context.Context) ([]db.Run, error) {
	return s.qry.ListRuns(ctx)
}

// Delete removes a run and everything saved with it.
func (s Store) Delete(ctx context.Context, runId string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteRunStats(ctx, runId)
	if err != nil {
		return err
	}
	err = txqry.DeleteRunColumns(ctx, runId)
	if err != nil {
		return err
	}
	err = txqry.DeleteRun(ctx, runId)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// History returns the value of one stat of a player across every run.
func (s Store) History(ctx context.Context, player, team, stat string) ([]db.GetPlayerHistoryRow, error) {
	return s.qry.GetPlayerHistory(ctx, db.GetPlayerHistoryParams{
		Player: player,
		Team:   team,
		Stat:   stat,
	})
}
