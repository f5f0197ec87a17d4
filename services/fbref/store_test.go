package fbref

import (
	"context"
	"footstats/lib/dataset"
	"footstats/lib/testutil"
	"footstats/services/fbref/db"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "fbref",
		DbSchema: db.Schema,
	})
	defer cleanup()

	store := NewStore(res.DB)
	ctx := context.Background()

	table, err := dataset.New(
		[]string{"Player", "Team", "Minutes", "Save%"},
		[][]dataset.Cell{
			{dataset.Value("J. Doe"), dataset.Value("Team A"), dataset.Value("950"), dataset.NA},
			{dataset.Value("Z. Iron"), dataset.Value("Team B"), dataset.Value("1080"), dataset.Value("71.2")},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	params := SaveParams{
		LayoutVersion: "2024-25",
		PlayerColumn:  "Player",
		TeamColumn:    "Team",
		Time:          time.Unix(1000, 0),
	}
	first, err := store.Save(ctx, table, params)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, first, 12)

	loaded, err := store.Load(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	diff := cmp.Diff(table.Records(), loaded.Records())
	if diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, table.Columns(), loaded.Columns())

	params.Time = time.Unix(2000, 0)
	updated, err := table.MapColumn("Save%", func(c dataset.Cell) dataset.Cell {
		return dataset.Value("50")
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Save(ctx, updated, params)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 2)
	require.Equal(t, second, runs[0].ID)

	history, err := store.History(ctx, "Z. Iron", "Team B", "Save%")
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, history, 2)
	require.Equal(t, "71.2", history[0].Value.String)
	require.Equal(t, "50", history[1].Value.String)

	err = store.Delete(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Load(ctx, first)
	require.Error(t, err)
	history, err = store.History(ctx, "J. Doe", "Team A", "Save%")
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, history, 1)
	require.False(t, history[0].Value.Valid)
}

func TestStoreRequiresKey(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "fbref",
		DbSchema: db.Schema,
	})
	defer cleanup()

	table, err := dataset.Strings([]string{"Player", "Squad"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewStore(res.DB).Save(context.Background(), table, SaveParams{
		PlayerColumn: "Player",
		TeamColumn:   "Team",
	})
	require.Error(t, err)
}
