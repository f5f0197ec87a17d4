package configlibsql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const schema = `create table if not exists kv (k text primary key, v text);`

func TestOpenMemory(t *testing.T) {
	db, err := Struct{File: ":memory:"}.OpenWithSchema(schema)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Exec("insert into kv (k, v) values ('a', '1')")
	if err != nil {
		t.Fatal(err)
	}
	var v string
	err = db.QueryRow("select v from kv where k = 'a'").Scan(&v)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "1", v)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := Struct{File: path}.OpenWithSchema(schema)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec("insert into kv (k, v) values ('a', '1')")
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	// the schema is idempotent and the data survives a reopen
	db, err = Struct{File: path}.OpenWithSchema(schema)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var count int
	err = db.QueryRow("select count(*) from kv").Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 1, count)
}

func TestOpenRequiresLocation(t *testing.T) {
	_, err := Struct{}.OpenDB()
	require.Error(t, err)

	_, err = Struct{File: ":memory:"}.OpenWithSchema("not sql")
	require.Error(t, err)
}
