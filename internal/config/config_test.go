package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("INDEED_USER_DATA_DIR", "")

	path := writeConfig(t, `
search:
  base_url: "https://br.indeed.com/jobs?q=golang"
browser:
  user_data_dir: "/tmp/profile"
  language: "br"
llm:
  model: "gemini-2.5-pro"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "br", cfg.Browser.Language)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 50, cfg.Search.End)
	assert.Equal(t, 20, cfg.MaxApplies)
	assert.NotEmpty(t, cfg.Storage.RegistryPath)
	assert.NotEmpty(t, cfg.Storage.CachePath)
	assert.NotEmpty(t, cfg.Storage.HistoryPath)
}

func TestLoad_RequiresSearchAndProfile(t *testing.T) {
	_, err := Load(writeConfig(t, `
browser:
  user_data_dir: "/tmp/profile"
`))
	assert.ErrorContains(t, err, "base_url")

	_, err = Load(writeConfig(t, `
search:
  base_url: "https://br.indeed.com/jobs?q=golang"
`))
	assert.ErrorContains(t, err, "user_data_dir")
}

func TestLoad_RejectsBadPagination(t *testing.T) {
	_, err := Load(writeConfig(t, `
search:
  base_url: "https://br.indeed.com/jobs?q=golang"
  start: 40
  end: 10
browser:
  user_data_dir: "/tmp/profile"
`))
	assert.ErrorContains(t, err, "pagination")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSearchURLs(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
search:
  base_url: "https://br.indeed.com/jobs?q=golang"
  base_urls:
    - "https://br.indeed.com/jobs?q=backend"
    - "https://br.indeed.com/jobs?q=devops"
browser:
  user_data_dir: "/tmp/profile"
`))
	require.NoError(t, err)

	urls := cfg.SearchURLs()
	require.Len(t, urls, 3)
	assert.Equal(t, "https://br.indeed.com/jobs?q=golang", urls[0])
	assert.Equal(t, "https://br.indeed.com/jobs?q=devops", urls[2])
}
