package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/fwojciec/sitecrawl"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG data and config directories.
const AppName = "sitecrawl"

// DefaultConfigFile is searched for in the XDG config directories.
var DefaultConfigFile = filepath.Join(AppName, "config.yaml")

// Config is the YAML configuration file. Crawl options are inlined at the
// top level; command-line flags override them.
//
//	user_agent: "Mozilla/5.0 (compatible; mybot/1.0)"
//	obey_robots: true
//	concurrency: 8
//	delay: 500ms
//	exclude_paths: [https://example.com/admin]
type Config struct {
	UserAgent       string        `yaml:"user_agent"`
	ObeyRobots      bool          `yaml:"obey_robots"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	BrowserBin      string        `yaml:"browser_bin"`
	BrowserMaxPages int64         `yaml:"browser_max_pages"`
	Addr            string        `yaml:"addr"`

	Options sitecrawl.Options `yaml:",inline"`
}

// LoadConfig reads the configuration file at path. An empty path searches
// the XDG config directories and yields an empty Config when none exists;
// an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		found, err := xdg.SearchConfigFile(DefaultConfigFile)
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, sitecrawl.Errorf(sitecrawl.ENOTFOUND, "config file %q not found", path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, sitecrawl.Errorf(sitecrawl.EINVALID, "invalid config file %q: %v", path, err)
	}
	return cfg, nil
}

// defaultDBPath returns the database location under the XDG data directory.
func defaultDBPath() string {
	path, err := xdg.DataFile(filepath.Join(AppName, AppName+".db"))
	if err != nil {
		return AppName + ".db"
	}
	return path
}
