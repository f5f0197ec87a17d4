package commands

import (
	"footstats/lib/configutil"
	configlibsql "footstats/lib/configutil/libsql"
	"footstats/lib/scraper"
	"os"
	"time"
)

type ScraperConfig struct {
	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerMinute float64 `json:"requests_per_minute"`
	DumpDir           string  `json:"dump_dir"`
}

func (c ScraperConfig) Options() scraper.ClientOptions {
	return scraper.ClientOptions{
		UserAgent:         c.UserAgent,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerMinute: c.RequestsPerMinute,
		DumpDir:           c.DumpDir,
	}
}

type Config struct {
	Scraper ScraperConfig `json:"scraper"`
	// path to a layout file, empty for the embedded one
	Layout   string              `json:"layout"`
	Database configlibsql.Struct `json:"database"`
	// transfer value cache and the listing pages it is filled from
	ValueCache string   `json:"value_cache"`
	ValueUrls  []string `json:"value_urls"`
}

func defaultConfig() Config {
	return Config{
		Scraper: ScraperConfig{
			TimeoutSeconds:    30,
			RequestsPerMinute: 10,
		},
		ValueCache: "transfer_cache.json",
	}
}

// loadConfig reads footstats.json5 from the cwd or any parent directory,
// the database url and token can also come from the environment.
func loadConfig() (Config, error) {
	config, err := configutil.WithDefaults("footstats.json5", defaultConfig())
	if err != nil {
		return Config{}, err
	}
	if url := os.Getenv("FOOTSTATS_DB_URL"); url != "" {
		config.Database.Url = url
	}
	if token := os.Getenv("FOOTSTATS_DB_AUTH_TOKEN"); token != "" {
		config.Database.AuthToken = token
	}
	return config, nil
}

// dbFlags overrides the configured database when set.
type dbFlags struct {
	file string
	url  string
}

func (f dbFlags) resolve(config configlibsql.Struct) configlibsql.Struct {
	if f.url != "" {
		return configlibsql.Struct{Url: f.url, AuthToken: config.AuthToken}
	}
	if f.file != "" {
		return configlibsql.Struct{File: f.file}
	}
	return config
}

func configured(config configlibsql.Struct) bool {
	return config.Url != "" || config.File != ""
}

