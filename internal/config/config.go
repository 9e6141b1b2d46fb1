// Package config loads the bot's YAML configuration and applies
// defaults and environment overrides. Secrets never live in the YAML
// file; they come from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Search selects listing pages to harvest. BaseURL is a full Indeed
// search URL; BaseURLs runs several searches in one session. Start/End
// paginate each search in steps of 10 (Indeed's page size).
type Search struct {
	BaseURL  string   `yaml:"base_url"`
	BaseURLs []string `yaml:"base_urls"`
	Start    int      `yaml:"start"`
	End      int      `yaml:"end"`
}

// Browser configures the Chrome session. UserDataDir must point at a
// profile already logged in to Indeed.
type Browser struct {
	UserDataDir string `yaml:"user_data_dir"`
	Language    string `yaml:"language"`
	Proxy       string `yaml:"proxy"`
	Headless    bool   `yaml:"headless"`
}

// Candidate carries per-user data used for answers and documents.
type Candidate struct {
	Name        string `yaml:"name"`
	CVPath      string `yaml:"cv_path"`
	BaseCVDoc   string `yaml:"base_cv_doc"`  // markdown CV used for tailoring
	CoverLetter string `yaml:"cover_letter"` // base cover letter text
	OutputDir   string `yaml:"output_dir"`   // where tailored documents land
}

// Storage locates the durable state files.
type Storage struct {
	RegistryPath string `yaml:"registry_path"`
	CachePath    string `yaml:"cache_path"`
	HistoryPath  string `yaml:"history_path"`
}

// LLM configures the generative fallback. Empty APIKey disables it.
type LLM struct {
	APIKey string `yaml:"-"` // GEMINI_API_KEY only
	Model  string `yaml:"model"`
}

// Config is the root of the YAML file.
type Config struct {
	Search    Search    `yaml:"search"`
	Browser   Browser   `yaml:"browser"`
	Candidate Candidate `yaml:"candidate"`
	Storage   Storage   `yaml:"storage"`
	LLM       LLM       `yaml:"llm"`

	MaxApplies int  `yaml:"max_applies"`
	Verify     bool `yaml:"verify_submissions"`
}

// Load reads path, fills defaults, applies env overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.applyDefaults()
	c.applyEnv()

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	home := os.Getenv("HOME")
	stateDir := filepath.Join(home, ".indeed-bot")

	if c.Browser.Language == "" {
		c.Browser.Language = "us"
	}
	if c.Storage.RegistryPath == "" {
		c.Storage.RegistryPath = filepath.Join(stateDir, "registry.json")
	}
	if c.Storage.CachePath == "" {
		c.Storage.CachePath = filepath.Join(stateDir, "answers.json")
	}
	if c.Storage.HistoryPath == "" {
		c.Storage.HistoryPath = filepath.Join(stateDir, "history.db")
	}
	if c.Candidate.OutputDir == "" {
		c.Candidate.OutputDir = filepath.Join(stateDir, "documents")
	}
	if c.Search.End == 0 {
		c.Search.End = 50
	}
	if c.MaxApplies == 0 {
		c.MaxApplies = 20
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("INDEED_USER_DATA_DIR"); v != "" {
		c.Browser.UserDataDir = v
	}
}

func (c *Config) validate() error {
	if c.Search.BaseURL == "" && len(c.Search.BaseURLs) == 0 {
		return fmt.Errorf("config: search.base_url or search.base_urls is required")
	}
	if c.Browser.UserDataDir == "" {
		return fmt.Errorf("config: browser.user_data_dir is required (a profile logged in to Indeed)")
	}
	if c.Search.Start < 0 || c.Search.End < c.Search.Start {
		return fmt.Errorf("config: search.start/end pagination range is invalid")
	}
	return nil
}

// SearchURLs returns every configured search URL, BaseURL first.
func (c *Config) SearchURLs() []string {
	urls := []string{}
	if c.Search.BaseURL != "" {
		urls = append(urls, c.Search.BaseURL)
	}
	urls = append(urls, c.Search.BaseURLs...)
	return urls
}
