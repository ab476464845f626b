package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rubiojr/koho/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	dir := setupXDG(t)

	cfg, err := LoadConfig(filepath.Join(dir, "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "koho", "index.json"), cfg.Index)
	assert.Equal(t, 20, cfg.Limit)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, "abort", cfg.OnError)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout.Duration)
	assert.Equal(t, "Mitsuo-Koikawa", cfg.GitHub.Owner)
	assert.Equal(t, "Municipal-Bulletin", cfg.GitHub.Repo)
	assert.Equal(t, "main", cfg.GitHub.Ref)
	assert.Equal(t, "Mitsuo-Koikawa/Municipal-Bulletin", cfg.Server.Access.Repository)
	assert.Equal(t, AccessLogSQLite, cfg.Server.AccessLog.Sink)
	assert.Equal(t, filepath.Join(dir, "data", "koho", "access.db"), cfg.Server.AccessLog.Database)
	assert.Equal(t, "http://localhost:8080", cfg.Client.ServerURL)
	assert.Equal(t, filepath.Join(dir, "config", "koho", "session.toml"), cfg.Client.TokenFile)
}

func TestLoadConfigFromFile(t *testing.T) {
	setupXDG(t)
	path := writeConfig(t, `
index = "https://example.com/index.json"
concurrency = 4
on_error = "placeholder"
fetch_timeout = "30s"

[github]
owner = "someone"
repo = "bulletins"

[server]
port = 9000

[server.access]
allowed_users = ["alice", "bob"]

[server.access_log]
sink = "none"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/index.json", cfg.Index)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout.Duration)
	assert.Equal(t, "someone/bulletins", cfg.Server.Access.Repository)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Server.Access.AllowedUsers)
	assert.Equal(t, "http://localhost:9000", cfg.Client.ServerURL)
	assert.Empty(t, cfg.Server.AccessLog.Database)
	assert.Equal(t, document.Options{Concurrency: 4, OnError: document.Placeholder}, cfg.AssemblerOptions())
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	setupXDG(t)

	tests := []struct {
		name    string
		content string
	}{
		{"bad policy", `on_error = "retry"`},
		{"bad sink", "[server.access_log]\nsink = \"s3\""},
		{"gist without id", "[server.access_log]\nsink = \"gist\""},
		{"bad repository", "[server.access]\nrepository = \"no-slash\""},
		{"bad duration", `fetch_timeout = "soon"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestOwnerRepo(t *testing.T) {
	owner, repo, err := AccessConfig{Repository: "a/b"}.OwnerRepo()
	require.NoError(t, err)
	assert.Equal(t, "a", owner)
	assert.Equal(t, "b", repo)

	_, _, err = AccessConfig{Repository: "a/b/c"}.OwnerRepo()
	assert.Error(t, err)
}

func TestSaveTemplateConfigRoundTrips(t *testing.T) {
	dir := setupXDG(t)
	path := filepath.Join(dir, "config", "koho", "config.toml")

	cfg, err := GetDefaultConfig()
	require.NoError(t, err)
	cfg.Index = "/srv/koho/index.json"
	require.NoError(t, cfg.SaveTemplateConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `index = "/srv/koho/index.json"`)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/koho/index.json", loaded.Index)
	assert.Equal(t, 8181, loaded.Client.CallbackPort)
}

func TestDurationText(t *testing.T) {
	var v struct {
		D Duration `toml:"d"`
	}
	require.NoError(t, toml.Unmarshal([]byte(`d = "1m30s"`), &v))
	assert.Equal(t, 90*time.Second, v.D.Duration)

	out, err := v.D.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(out))
}

func TestParserUsesConfiguredSynonyms(t *testing.T) {
	setupXDG(t)
	path := writeConfig(t, `
[synonyms]
"子育て" = ["子育て", "育児"]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	parsed := cfg.Parser().Parse("育児")
	require.Len(t, parsed.Groups, 1)
	assert.Equal(t, []string{"子育て", "育児"}, []string(parsed.Groups[0]))

	parsed = cfg.Parser().Parse("住み替え")
	assert.Equal(t, []string{"移住", "住み替え", "移転"}, []string(parsed.Groups[0]))
}

func TestParserUsesSynonymPreset(t *testing.T) {
	setupXDG(t)
	path := writeConfig(t, `
synonym_preset = "extended"

[synonyms]
"防災" = ["防災", "減災"]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "extended", cfg.SynonymPreset)

	parsed := cfg.Parser().Parse("引越し")
	require.Len(t, parsed.Groups, 1)
	assert.Equal(t, []string{"移住", "住み替え", "移転", "転入", "引越し"}, []string(parsed.Groups[0]))

	parsed = cfg.Parser().Parse("減災")
	assert.Equal(t, []string{"防災", "減災"}, []string(parsed.Groups[0]))
}

func TestSynonymPresetDefaultsAndValidation(t *testing.T) {
	setupXDG(t)

	cfg, err := LoadConfig(writeConfig(t, ``))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.SynonymPreset)

	_, err = LoadConfig(writeConfig(t, `synonym_preset = "everything"`))
	assert.ErrorContains(t, err, "synonym_preset")
}

func TestTemplateSelectsDefaultPreset(t *testing.T) {
	setupXDG(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := GetDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.SaveTemplateConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "default", loaded.SynonymPreset)
}
