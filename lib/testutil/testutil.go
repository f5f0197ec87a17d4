package testutil

import (
	"database/sql"
	"fmt"
	configlibsql "footstats/lib/configutil/libsql"
	"footstats/lib/telemetry"
	"os"
	"path/filepath"
	"testing"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	if params.DbSchema == "" {
		return ServiceResult{}, cleanup
	}

	dbpath := params.DbPath
	if dbpath == "" {
		dbpath = ":memory:"
	}
	db, err := configlibsql.Struct{File: dbpath}.OpenWithSchema(params.DbSchema)
	if err != nil {
		t.Fatal(err)
	}

	return ServiceResult{DB: db}, func() {
		db.Close()
		cleanup()
	}
}

// WriteFiles writes `files` (relative name -> contents) under a fresh
// temporary directory and returns it.
func WriteFiles(t testing.TB, files map[string]string) string {
	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, name)
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(path, []byte(contents), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
