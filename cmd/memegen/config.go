package main

import (
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dimonomid/memegen/blhistory"
	"github.com/dimonomid/memegen/catalog"
	"github.com/dimonomid/memegen/export"
	"github.com/juju/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// APIURL is where the template catalog is fetched from.
	APIURL string `yaml:"api_url"`

	// CacheTTL is how long the cached catalog is used without refetching.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// ExportDir is where downloaded memes go.
	ExportDir string `yaml:"export_dir"`

	ShareBaseURL string `yaml:"share_base_url"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// StorePath is the file with the durable state: the catalog cache, the
	// theme and the recent memes.
	StorePath string `yaml:"store_path"`

	// HistorySize is how many undo steps are kept.
	HistorySize int `yaml:"history_size"`

	LogFile string `yaml:"log_file"`
}

const maxHistorySize = 1000

func DefaultConfig(homeDir string) Config {
	return Config{
		APIURL:       catalog.DefaultAPIURL,
		CacheTTL:     catalog.DefaultCacheTTL,
		ExportDir:    ".",
		ShareBaseURL: export.DefaultShareBaseURL,
		HTTPTimeout:  30 * time.Second,
		StorePath:    filepath.Join(homeDir, ".memegen_store.yaml"),
		HistorySize:  blhistory.DefaultMaxLen,
		LogFile:      filepath.Join(homeDir, ".memegen.log"),
	}
}

// DefaultConfigPath returns where the config is looked for when --config
// isn't given.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, ".config", "memegen", "config.yaml")
}

// LoadConfigFromFile reads the yaml config on top of the given defaults:
// whatever the file doesn't mention keeps the default value.
func LoadConfigFromFile(path string, defaults Config) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "opening config file: %s", path)
	}
	defer file.Close()

	data, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, errors.Annotatef(err, "reading config file %s", path)
	}

	cfg := defaults
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Annotatef(err, "unmarshaling yaml from %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Annotatef(err, "%s", path)
	}

	return &cfg, nil
}

// Validate makes sure the config is not obviously invalid.
func (cfg *Config) Validate() error {
	if err := validateHTTPURL(cfg.APIURL); err != nil {
		return errors.Annotatef(err, "api_url")
	}

	if err := validateHTTPURL(cfg.ShareBaseURL); err != nil {
		return errors.Annotatef(err, "share_base_url")
	}

	if cfg.CacheTTL < 0 {
		return errors.Errorf("cache_ttl can't be negative")
	}

	if cfg.HTTPTimeout <= 0 {
		return errors.Errorf("http_timeout must be positive")
	}

	if cfg.HistorySize < 1 || cfg.HistorySize > maxHistorySize {
		return errors.Errorf("history_size must be from 1 to %d, got %d", maxHistorySize, cfg.HistorySize)
	}

	if cfg.StorePath == "" {
		return errors.Errorf("store_path can't be empty")
	}

	return nil
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return errors.Trace(err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("%q: scheme must be http or https", s)
	}

	if u.Host == "" {
		return errors.Errorf("%q: host is missing", s)
	}

	return nil
}
