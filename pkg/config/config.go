// Package config loads pipeline parameters from an optional TOML file,
// with environment variables filling the data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config are the tunables shared across pipeline commands. Command-line
// flags override values loaded from file.
type Config struct {
	// DataDir is where sets and the result database live.
	DataDir string `toml:"data_dir"`
	// Identity is the clustering identity level the set was built at.
	Identity float64 `toml:"identity"`
	// K is the synteny block length.
	K int `toml:"k"`
	// Rmer enables repeat-collapsed windows.
	Rmer bool `toml:"rmer"`
	// Preferences is the genome-stem order for proxy tie-breaking.
	Preferences []string `toml:"preferences"`
	// DBPath is the SQLite result database, relative to DataDir unless
	// absolute.
	DBPath string `toml:"db_path"`
	// Workers bounds parallel fan-out; 0 means GOMAXPROCS.
	Workers int `toml:"workers"`
}

// Default returns the built-in configuration, with DataDir taken from
// AZULEJO_DATA when set.
func Default() Config {
	dataDir := os.Getenv("AZULEJO_DATA")
	if dataDir == "" {
		dataDir = "./data"
	}
	return Config{
		DataDir: dataDir,
		K:       6,
		DBPath:  "db/gene_table.db",
	}
}

// Load reads a TOML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveDB returns the absolute result-database path.
func (c Config) ResolveDB() string {
	if filepath.IsAbs(c.DBPath) {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, c.DBPath)
}
