package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration file shape. Zero values leave the
// corresponding default untouched. Stage selection is CLI-only.
//
//	files: 10
//	strings: 1000
//	db:
//	  driver: sqlite
//	  dsn: records.db
//	metrics:
//	  backend: pushgateway
type File struct {
	Files            int    `yaml:"files"`
	Strings          int    `yaml:"strings"`
	Seed             uint64 `yaml:"seed"`
	Encoding         string `yaml:"encoding"`
	Dir              string `yaml:"dir"`
	Artifact         string `yaml:"artifact"`
	FallbackEncoding string `yaml:"fallback_encoding"`
	MergeFlush       string `yaml:"merge_flush"`
	Progress         string `yaml:"progress"`
	Verbose          *bool  `yaml:"verbose"`

	DB      DBFile      `yaml:"db"`
	Metrics MetricsFile `yaml:"metrics"`
}

// DBFile is the "db" section of File.
type DBFile struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	Chunk    int    `yaml:"chunk"`
	LoadMode string `yaml:"load_mode"`
}

// MetricsFile is the "metrics" section of File.
type MetricsFile struct {
	Backend        string `yaml:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	DogStatsDAddr  string `yaml:"dogstatsd_addr"`
}

// applyFile reads path and overlays its non-zero values on c. Unknown keys
// are rejected so typos surface as errors.
func applyFile(c *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	var fc File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	fc.overlay(c)
	return nil
}

func (fc File) overlay(c *Config) {
	setInt(&c.Files, fc.Files)
	setInt(&c.Strings, fc.Strings)
	if fc.Seed != 0 {
		c.Seed = fc.Seed
	}
	setStr(&c.Encoding, fc.Encoding)
	setStr(&c.Dir, fc.Dir)
	setStr(&c.Artifact, fc.Artifact)
	setStr(&c.FallbackEncoding, fc.FallbackEncoding)
	setStr(&c.MergeFlush, fc.MergeFlush)
	setStr(&c.Progress, fc.Progress)
	if fc.Verbose != nil {
		c.Verbose = *fc.Verbose
	}

	setStr(&c.DBDriver, fc.DB.Driver)
	setStr(&c.DSN, fc.DB.DSN)
	setStr(&c.Table, fc.DB.Table)
	setInt(&c.Chunk, fc.DB.Chunk)
	setStr(&c.LoadMode, fc.DB.LoadMode)

	setStr(&c.MetricsBackend, fc.Metrics.Backend)
	setStr(&c.PushgatewayURL, fc.Metrics.PushgatewayURL)
	setStr(&c.DogStatsDAddr, fc.Metrics.DogStatsDAddr)
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
