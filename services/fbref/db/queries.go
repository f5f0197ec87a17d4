package db

import (
	"context"
	"database/sql"
)

type Run struct {
	ID            string
	LayoutVersion string
	CreatedAt     int64
}

const createRun = `insert into runs (id, layout_version, created_at) values (?, ?, ?)`

func (q *Queries) CreateRun(ctx context.Context, arg Run) error {
	_, err := q.db.ExecContext(ctx, createRun, arg.ID, arg.LayoutVersion, arg.CreatedAt)
	return err
}

const getRun = `select id, layout_version, created_at from runs where id = ?`

func (q *Queries) GetRun(ctx context.Context, id string) (Run, error) {
	row := q.db.QueryRowContext(ctx, getRun, id)
	var i Run
	err := row.Scan(&i.ID, &i.LayoutVersion, &i.CreatedAt)
	return i, err
}

const listRuns = `select id, layout_version, created_at from runs order by created_at desc, id`

func (q *Queries) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Run
	for rows.Next() {
		var i Run
		err := rows.Scan(&i.ID, &i.LayoutVersion, &i.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteRun = `delete from runs where id = ?`

// DeleteRun only removes the run row, sqlite does not enforce foreign keys
// unless asked to, see DeleteRunColumns and DeleteRunStats.
func (q *Queries) DeleteRun(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteRun, id)
	return err
}

const deleteRunColumns = `delete from run_columns where run_id = ?`

func (q *Queries) DeleteRunColumns(ctx context.Context, runID string) error {
	_, err := q.db.ExecContext(ctx, deleteRunColumns, runID)
	return err
}

const deleteRunStats = `delete from player_stats where run_id = ?`

func (q *Queries) DeleteRunStats(ctx context.Context, runID string) error {
	_, err := q.db.ExecContext(ctx, deleteRunStats, runID)
	return err
}

type CreateRunColumnParams struct {
	RunID    string
	Position int64
	Name     string
}

const createRunColumn = `insert into run_columns (run_id, position, name) values (?, ?, ?)`

func (q *Queries) CreateRunColumn(ctx context.Context, arg CreateRunColumnParams) error {
	_, err := q.db.ExecContext(ctx, createRunColumn, arg.RunID, arg.Position, arg.Name)
	return err
}

const getRunColumns = `select name from run_columns where run_id = ? order by position`

func (q *Queries) GetRunColumns(ctx context.Context, runID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getRunColumns, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		err := rows.Scan(&name)
		if err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	return items, rows.Err()
}

type PlayerStat struct {
	RunID    string
	RowIndex int64
	Player   string
	Team     string
	Stat     string
	Value    sql.NullString
}

const createPlayerStat = `insert into player_stats (run_id, row_index, player, team, stat, value) values (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePlayerStat(ctx context.Context, arg PlayerStat) error {
	_, err := q.db.ExecContext(
		ctx, createPlayerStat,
		arg.RunID, arg.RowIndex, arg.Player, arg.Team, arg.Stat, arg.Value,
	)
	return err
}

const getPlayerStats = `select run_id, row_index, player, team, stat, value from player_stats
where run_id = ?
order by row_index`

func (q *Queries) GetPlayerStats(ctx context.Context, runID string) ([]PlayerStat, error) {
	rows, err := q.db.QueryContext(ctx, getPlayerStats, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlayerStat
	for rows.Next() {
		var i PlayerStat
		err := rows.Scan(&i.RunID, &i.RowIndex, &i.Player, &i.Team, &i.Stat, &i.Value)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type GetPlayerHistoryParams struct {
	Player string
	Team   string
	Stat   string
}

type GetPlayerHistoryRow struct {
	RunID     string
	CreatedAt int64
	Value     sql.NullString
}

const getPlayerHistory = `select player_stats.run_id, runs.created_at, player_stats.value from player_stats
inner join runs on runs.id = player_stats.run_id
where player_stats.player = ? and player_stats.team = ? and player_stats.stat = ?
order by runs.created_at`

func (q *Queries) GetPlayerHistory(ctx context.Context, arg GetPlayerHistoryParams) ([]GetPlayerHistoryRow, error) {
	rows, err := q.db.QueryContext(ctx, getPlayerHistory, arg.Player, arg.Team, arg.Stat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetPlayerHistoryRow
	for rows.Next() {
		var i GetPlayerHistoryRow
		err := rows.Scan(&i.RunID, &i.CreatedAt, &i.Value)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
