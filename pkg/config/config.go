package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rubiojr/koho/pkg/article"
	"github.com/rubiojr/koho/pkg/document"
	"github.com/rubiojr/koho/pkg/query"
	"github.com/rubiojr/koho/pkg/search"
)

//go:embed config.toml.sample
var configTemplate string

const (
	DefaultHost         = "localhost"
	DefaultPort         = 8080
	DefaultCallbackPort = 8181
	DefaultFetchTimeout = 2 * time.Minute
)

// Access log sinks.
const (
	AccessLogSQLite = "sqlite"
	AccessLogGist   = "gist"
	AccessLogNone   = "none"
)

type Config struct {
	// Index is a file path or http(s) URL of the catalog JSON.
	Index string `toml:"index"`
	// WebIndex is a file path or http(s) URL of the crawl index served by
	// /api/websearch. Empty disables it.
	WebIndex string `toml:"web_index,omitempty"`
	// ArticlesDir, when set, serves article bodies from a local checkout of
	// the bulletin CSV files instead of the GitHub contents API.
	ArticlesDir  string   `toml:"articles_dir,omitempty"`
	Limit        int      `toml:"limit"`
	Concurrency  int      `toml:"concurrency"`
	OnError      string   `toml:"on_error"`
	FetchTimeout Duration `toml:"fetch_timeout"`

	// SynonymPreset selects the built-in synonym table: "default" or
	// "extended".
	SynonymPreset string `toml:"synonym_preset"`
	// Synonyms extends the preset table, keyed by canonical keyword.
	Synonyms map[string][]string `toml:"synonyms,omitempty"`

	GitHub GitHubConfig `toml:"github"`
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`
}

// GitHubConfig locates the repository holding the bulletin CSV files.
type GitHubConfig struct {
	Owner string `toml:"owner"`
	Repo  string `toml:"repo"`
	Ref   string `toml:"ref"`
	Token string `toml:"token,omitempty"`
}

type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ClientID     string `toml:"client_id,omitempty"`
	ClientSecret string `toml:"client_secret,omitempty"`

	Access    AccessConfig    `toml:"access"`
	AccessLog AccessLogConfig `toml:"access_log"`
}

// AccessConfig decides who may use the advanced search endpoint. It is
// re-read while the server runs.
type AccessConfig struct {
	// Repository is "owner/name". Collaborators of it are allowed.
	Repository   string   `toml:"repository"`
	AllowedUsers []string `toml:"allowed_users,omitempty"`
}

type AccessLogConfig struct {
	Sink      string `toml:"sink"`
	Database  string `toml:"database,omitempty"`
	GistID    string `toml:"gist_id,omitempty"`
	GistToken string `toml:"gist_token,omitempty"`
}

// ClientConfig is used by the login, logout and advsearch commands.
type ClientConfig struct {
	ServerURL    string `toml:"server_url"`
	ClientID     string `toml:"client_id,omitempty"`
	CallbackPort int    `toml:"callback_port"`
	TokenFile    string `toml:"token_file,omitempty"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	c := &Config{}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() error {
	if c.Index == "" {
		dataDir, err := GetDefaultStorageDir()
		if err != nil {
			return fmt.Errorf("getting default storage directory: %w", err)
		}
		c.Index = filepath.Join(dataDir, "index.json")
	}
	if c.Limit <= 0 {
		c.Limit = search.DefaultLimit
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.OnError == "" {
		c.OnError = "abort"
	}
	if c.SynonymPreset == "" {
		c.SynonymPreset = query.PresetDefault
	}
	if c.FetchTimeout.Duration == 0 {
		c.FetchTimeout = Duration{DefaultFetchTimeout}
	}

	if c.GitHub.Owner == "" {
		c.GitHub.Owner = article.DefaultOwner
	}
	if c.GitHub.Repo == "" {
		c.GitHub.Repo = article.DefaultRepo
	}
	if c.GitHub.Ref == "" {
		c.GitHub.Ref = article.DefaultRef
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Access.Repository == "" {
		c.Server.Access.Repository = c.GitHub.Owner + "/" + c.GitHub.Repo
	}
	if c.Server.AccessLog.Sink == "" {
		c.Server.AccessLog.Sink = AccessLogSQLite
	}
	if c.Server.AccessLog.Sink == AccessLogSQLite && c.Server.AccessLog.Database == "" {
		dataDir, err := GetDefaultStorageDir()
		if err != nil {
			return fmt.Errorf("getting default storage directory: %w", err)
		}
		c.Server.AccessLog.Database = filepath.Join(dataDir, "access.db")
	}

	if c.Client.ServerURL == "" {
		c.Client.ServerURL = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	if c.Client.CallbackPort == 0 {
		c.Client.CallbackPort = DefaultCallbackPort
	}
	if c.Client.TokenFile == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return fmt.Errorf("getting config directory: %w", err)
		}
		c.Client.TokenFile = filepath.Join(configDir, "session.toml")
	}
	return nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.FailurePolicy(); err != nil {
		return err
	}
	if _, err := query.WithPreset(c.SynonymPreset, nil); err != nil {
		return fmt.Errorf("synonym_preset: %w", err)
	}
	switch c.Server.AccessLog.Sink {
	case AccessLogSQLite, AccessLogNone:
	case AccessLogGist:
		if c.Server.AccessLog.GistID == "" {
			return fmt.Errorf("access_log: sink %q requires gist_id", AccessLogGist)
		}
	default:
		return fmt.Errorf("access_log: unknown sink %q", c.Server.AccessLog.Sink)
	}
	if _, _, err := c.Server.Access.OwnerRepo(); err != nil {
		return err
	}
	return nil
}

// FailurePolicy maps on_error to the assembler policy.
func (c *Config) FailurePolicy() (document.FailurePolicy, error) {
	switch strings.ToLower(c.OnError) {
	case "", "abort":
		return document.Abort, nil
	case "placeholder":
		return document.Placeholder, nil
	default:
		return document.Abort, fmt.Errorf("on_error: unknown policy %q", c.OnError)
	}
}

// AssemblerOptions returns the document assembler settings.
func (c *Config) AssemblerOptions() document.Options {
	policy, _ := c.FailurePolicy()
	return document.Options{Concurrency: c.Concurrency, OnError: policy}
}

// Parser returns the query parser for the configured synonym preset and
// overlay. An unknown preset falls back to the default table; Validate
// reports it.
func (c *Config) Parser() *query.Parser {
	synonyms, err := query.WithPreset(c.SynonymPreset, c.Synonyms)
	if err != nil {
		synonyms = query.WithDefaults(c.Synonyms)
	}
	return query.NewParser(synonyms)
}

// OwnerRepo splits Repository into its owner and name.
func (a AccessConfig) OwnerRepo() (string, string, error) {
	owner, repo, ok := strings.Cut(a.Repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("access: repository %q is not owner/name", a.Repository)
	}
	return owner, repo, nil
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	index := c.Index
	if index == "" {
		dataDir, err := GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
		index = filepath.Join(dataDir, "index.json")
	}

	// Replace the placeholder index path with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/koho/index.json", index, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default directory for the index and the
// access log database
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	kohoDir := filepath.Join(dataDir, "koho")

	if err := os.MkdirAll(kohoDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", kohoDir, err)
	}

	return kohoDir, nil
}

// GetConfigDir returns the configuration directory for koho
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	kohoConfigDir := filepath.Join(configDir, "koho")

	if err := os.MkdirAll(kohoConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", kohoConfigDir, err)
	}

	return kohoConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
