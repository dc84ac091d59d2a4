// Package config centralizes recordpipe configuration. All tunables come from
// command-line flags with environment-variable fallbacks, optionally seeded
// from a YAML file.
//
// Precedence, lowest to highest:
//  1. Built-in defaults.
//  2. YAML file named by -config or RECORDPIPE_CONFIG.
//  3. Environment (process env, then an optional .env file).
//  4. Explicit CLI flags.
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-files=4"})
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ConfigPathEnv names the environment variable holding the YAML config path.
const ConfigPathEnv = "RECORDPIPE_CONFIG"

// Config holds all process configuration. All fields are plain values so the
// struct can be copied freely after construction.
type Config struct {
	// Stages selected for this run.
	Create bool   // -create: generate files
	Merge  bool   // -merge: merge without exclusion
	Delete bool   // true when -delete was given, even with an empty value
	Remove string // -delete value: exclusion substring
	SQL    bool   // -sql: load the artifact

	// Generation.
	Files    int
	Strings  int
	Seed     uint64 // 0 picks a random seed
	Encoding string

	// Files and merge.
	Dir              string
	Artifact         string
	FallbackEncoding string
	MergeFlush       string

	// Destination.
	DBDriver string
	DSN      string
	Table    string
	Chunk    int
	LoadMode string

	// Output and metrics.
	Progress       string // bar, lines, none
	MetricsBackend string // none, pushgateway, datadog
	PushgatewayURL string
	DogStatsDAddr  string

	ConfigPath string
	Verbose    bool
	Validate   bool // validate configuration and exit
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Files:          100,
		Strings:        100000,
		Encoding:       "utf-8",
		Dir:            "files",
		Artifact:       "merged.txt",
		MergeFlush:     "file",
		DBDriver:       "postgres",
		DSN:            "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		Table:          "all_data",
		Chunk:          10000,
		LoadMode:       "replace",
		Progress:       "bar",
		MetricsBackend: "none",
		PushgatewayURL: "http://localhost:9091",
		DogStatsDAddr:  "127.0.0.1:8125",
	}
}

// AnyStage reports whether at least one stage was requested.
func (c *Config) AnyStage() bool {
	return c.Create || c.Merge || c.Delete || c.SQL
}

// RunMerge reports whether the merge stage should run. -delete implies it.
func (c *Config) RunMerge() bool { return c.Merge || c.Delete }

// LoadFromArgs builds a Config by defining flags on fs, seeding each flag's
// default from getenv (and the YAML file, when one is named), then parsing
// args. Parse errors are returned as-is so callers can map them to a usage
// exit code.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	base := Defaults()

	path := configPathFromArgs(args)
	if path == "" {
		path = getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := applyFile(&base, path); err != nil {
			return nil, err
		}
	}
	base.ConfigPath = path

	cfg := &Config{}

	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	uintEnvOrDefaultFn := func(k string, d uint64) uint64 {
		if v := getenv(k); v != "" {
			if u, err := strconv.ParseUint(v, 10, 64); err == nil {
				return u
			}
		}
		return d
	}
	boolEnvOrDefaultFn := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	// Stages
	fs.BoolVar(&cfg.Create, "create", false, "Generate record files")
	fs.BoolVar(&cfg.Merge, "merge", false, "Merge files into the artifact without filtering")
	fs.StringVar(&cfg.Remove, "delete", "", "Drop lines containing this substring, then merge")
	fs.BoolVar(&cfg.SQL, "sql", false, "Load the artifact into the database")

	// Generation
	fs.IntVar(&cfg.Files, "files", intEnvOrDefaultFn("FILES", base.Files), "Number of files to create")
	fs.IntVar(&cfg.Strings, "strings", intEnvOrDefaultFn("STRINGS", base.Strings), "Lines per file")
	fs.Uint64Var(&cfg.Seed, "seed", uintEnvOrDefaultFn("SEED", base.Seed), "Generator seed (0 = random)")
	fs.StringVar(&cfg.Encoding, "encoding", envOrDefaultFn("FILE_ENCODING", base.Encoding), "Output encoding for created files")

	// Files and merge
	fs.StringVar(&cfg.Dir, "dir", envOrDefaultFn("FILES_DIR", base.Dir), "Directory holding the record files")
	fs.StringVar(&cfg.Artifact, "artifact", envOrDefaultFn("ARTIFACT_PATH", base.Artifact), "Merged output file")
	fs.StringVar(&cfg.FallbackEncoding, "fallback-encoding", envOrDefaultFn("FALLBACK_ENCODING", base.FallbackEncoding), "Decode non-UTF-8 files with this encoding during merge")
	fs.StringVar(&cfg.MergeFlush, "merge-flush", envOrDefaultFn("MERGE_FLUSH", base.MergeFlush), "Artifact flush policy: 'file' or 'end'")

	// DB connectivity
	fs.StringVar(&cfg.DBDriver, "db_driver", envOrDefaultFn("DB_DRIVER", base.DBDriver), "Database driver: postgres, sqlite, mysql or mssql")
	fs.StringVar(&cfg.DSN, "dsn", envOrDefaultFn("DB_DSN", base.DSN), "Database DSN")
	fs.StringVar(&cfg.Table, "table", envOrDefaultFn("DB_TABLE", base.Table), "Destination table")
	fs.IntVar(&cfg.Chunk, "chunk", intEnvOrDefaultFn("CHUNK_SIZE", base.Chunk), "Rows per batch")
	fs.StringVar(&cfg.LoadMode, "load-mode", envOrDefaultFn("LOAD_MODE", base.LoadMode), "Table preparation: 'replace' or 'append'")

	// Output
	fs.StringVar(&cfg.Progress, "progress", envOrDefaultFn("PROGRESS", base.Progress), "Progress output: bar, lines or none")
	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", envOrDefaultFn("METRICS_BACKEND", base.MetricsBackend), "Metrics backend: none, pushgateway or datadog")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", envOrDefaultFn("PUSHGATEWAY_URL", base.PushgatewayURL), "Prometheus Pushgateway URL")
	fs.StringVar(&cfg.DogStatsDAddr, "dogstatsd-addr", envOrDefaultFn("DD_AGENT_ADDR", base.DogStatsDAddr), "DogStatsD address")
	fs.StringVar(&cfg.ConfigPath, "config", base.ConfigPath, "Optional YAML config file")
	fs.BoolVar(&cfg.Verbose, "v", boolEnvOrDefaultFn("VERBOSE", base.Verbose), "Verbose logging")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "delete" {
			cfg.Delete = true
		}
	})
	return cfg, nil
}

// WithDotEnv returns a getenv that consults getenv first and falls back to the
// KEY=VALUE pairs in path. A missing file is not an error.
func WithDotEnv(getenv func(string) string, path string) (func(string) string, error) {
	vals, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return getenv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return func(k string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return vals[k]
	}, nil
}

// configPathFromArgs finds -config/--config in args without a full parse.
func configPathFromArgs(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		name, val, hasVal := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasVal {
			return val
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
