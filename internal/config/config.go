// Package config holds process-wide configuration. A Config is built
// once at startup and passed down explicitly; there is no package-level
// mutable state.
package config

import (
	"os"
	"strconv"
)

// Defaults, overridable by environment or flags.
const (
	DefaultDBPath   = "./data/wikidata.db"
	DefaultDumpPath = "./data/dump.json.bz2"
	DefaultAddr     = "localhost:8000"

	DefaultBatchSize       = 1000
	DefaultCheckpointEvery = 10000
	DefaultSearchLimit     = 10
)

// Config is the resolved process configuration.
type Config struct {
	DBPath   string
	DumpPath string
	Addr     string

	BatchSize       int
	CheckpointEvery int
	SearchLimit     int
}

// FromEnv builds a Config from defaults and WIKIMIRROR_* environment
// variables. Flags layer on top of the returned value.
func FromEnv() Config {
	cfg := Config{
		DBPath:          DefaultDBPath,
		DumpPath:        DefaultDumpPath,
		Addr:            DefaultAddr,
		BatchSize:       DefaultBatchSize,
		CheckpointEvery: DefaultCheckpointEvery,
		SearchLimit:     DefaultSearchLimit,
	}
	if v := os.Getenv("WIKIMIRROR_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WIKIMIRROR_DUMP"); v != "" {
		cfg.DumpPath = v
	}
	if v := os.Getenv("WIKIMIRROR_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("WIKIMIRROR_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("WIKIMIRROR_CHECKPOINT_EVERY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CheckpointEvery = n
		}
	}
	return cfg
}
