package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

func printScripts() {
	names := make([]string, 0, len(scriptMap))
	for key := range scriptMap {
		names = append(names, key)
	}
	sort.Strings(names)

	fmt.Println("Scripts:")
	for _, name := range names {
		fmt.Println("\t" + name)
	}
}

func main() {
	flag.Parse()

	script := flag.Arg(0)
	fn, ok := scriptMap[script]
	if !ok {
		fmt.Printf(
			"you must specify a valid script, '%s' is not a valid script.\n",
			script,
		)
		printScripts()
		os.Exit(1)
	}

	fn()
}

func cmd(name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fullCmd := name
	for _, a := range args {
		fullCmd += " "
		fullCmd += a
	}

	fmt.Printf("$ %s\n", fullCmd)
	err := cmd.Run()
	if err != nil {
		os.Exit(1)
	}
}

var scriptMap = map[string]func(){
	"dev:apply_db_schema": migrateDb,
	"dev:scrape_offline":  scrapeOffline,
	"dev:analyze":         analyze,
}

func migrateDb() {
	cmd(
		"atlas", "schema", "apply",
		"-u", "sqlite://dev/.state/runs.db",
		"--to", "file://services/fbref/db/schema.sql",
		"--dev-url", "sqlite://dev?mode=memory",
	)
}

// scrapeOffline rebuilds the dataset from pages saved under dev/.state/pages,
// ex. with `curl -o dev/.state/pages/standard.html <url>`.
func scrapeOffline() {
	cmd(
		"go", "run", "./cmd/footstats", "scrape",
		"--html-dir", "dev/.state/pages",
		"--out", "dev/.state/result.csv",
		"--preview", "10",
	)
}

func analyze() {
	cmd("go", "run", "./cmd/footstats", "report", "--in", "dev/.state/result.csv", "--dir", "dev/.state/report")
	cmd("go", "run", "./cmd/footstats", "cluster", "--in", "dev/.state/result.csv", "--out", "dev/.state/clusters.csv")
}
