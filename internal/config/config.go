// Package config loads the daemon configuration from a YAML file and fills
// in defaults. Only the remote authority URL has no default.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hnrobert/remlogon/internal/audit"
	"github.com/hnrobert/remlogon/internal/hostfs"
)

// Account store backends.
const (
	BackendFiles = "files"
	BackendCmd   = "cmd"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Remote   RemoteConfig   `yaml:"remote"`
	Accounts AccountsConfig `yaml:"accounts"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
	Audit    AuditConfig    `yaml:"audit"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	JWTSecret  string `yaml:"jwt_secret"`
	// NoticePath points at a markdown file shown on the logon page.
	NoticePath string `yaml:"notice_path"`
}

type RemoteConfig struct {
	// URL is the one fixed verification endpoint, e.g.
	// https://vivendi.example.net/olat/auth. Required.
	URL     string        `yaml:"url"`
	Domain  string        `yaml:"domain"`
	Timeout time.Duration `yaml:"-"`

	TimeoutRaw string `yaml:"timeout"`

	// InsecureSkipVerify disables TLS verification; lab use only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

type AccountsConfig struct {
	Backend    string `yaml:"backend"`
	PasswdPath string `yaml:"passwd_path"`
	ShadowPath string `yaml:"shadow_path"`
	GroupPath  string `yaml:"group_path"`
}

type SessionConfig struct {
	// Enabled starts a login shell after an accepted attempt.
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Debug bool   `yaml:"debug"`
}

type AuditConfig struct {
	Path       string `yaml:"path"`
	MaxRecords int    `yaml:"max_records"`
}

func Default() *Config {
	passwd, _ := hostfs.Path(hostfs.EtcPasswdRel)
	shadow, _ := hostfs.Path(hostfs.EtcShadowRel)
	group, _ := hostfs.Path(hostfs.EtcGroupRel)
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":14393",
		},
		Remote: RemoteConfig{
			Timeout: 30 * time.Second,
		},
		Accounts: AccountsConfig{
			Backend:    BackendFiles,
			PasswdPath: passwd,
			ShadowPath: shadow,
			GroupPath:  group,
		},
		Audit: AuditConfig{
			Path: audit.DefaultPath(),
		},
	}
}

// Load reads path into a Config with defaults applied and validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Remote.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Remote.TimeoutRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid remote.timeout %q: %w", cfg.Remote.TimeoutRaw, err)
		}
		cfg.Remote.Timeout = d
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Remote.URL == "" {
		return fmt.Errorf("remote.url is required")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be positive")
	}
	switch c.Accounts.Backend {
	case BackendFiles, BackendCmd:
	default:
		return fmt.Errorf("accounts.backend must be %q or %q, got %q", BackendFiles, BackendCmd, c.Accounts.Backend)
	}
	if c.Accounts.Backend == BackendFiles {
		if c.Accounts.PasswdPath == "" || c.Accounts.ShadowPath == "" || c.Accounts.GroupPath == "" {
			return fmt.Errorf("accounts file paths are required for the files backend")
		}
	}
	return nil
}
