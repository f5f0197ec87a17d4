package main

import (
	"fmt"
	devenv "footstats/dev/env"
	configlibsql "footstats/lib/configutil/libsql"
	fbrefdb "footstats/services/fbref/db"
	"log/slog"
	"os"
	"path/filepath"
)

func createDb(filename, schema string) error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := configlibsql.Struct{File: path}.OpenWithSchema(schema)
	if err != nil {
		return err
	}
	return db.Close()
}

func CreateEmptyServiceDBs() error {
	return createDb("runs.db", fbrefdb.Schema)
}

const localConfig = `{
  database: { file: "<dev_state>/runs.db" },
  value_cache: "dev/.state/transfer_cache.json",
}
`

// CreateLocalConfig points footstats at the dev state unless a local config
// already exists.
func CreateLocalConfig() error {
	_, err := os.Stat("footstats.local.json5")
	if err == nil {
		fmt.Println("local config already exists at footstats.local.json5")
		return nil
	}
	return os.WriteFile("footstats.local.json5", []byte(localConfig), 0644)
}

func PrintConfigLocations() {
	slog.Info("footstats.local.json5 now stores runs and the transfer value cache under dev/.state, put a telemetry.json5 in the repository root to export traces.")
}
