package discogs

import "strings"

// Version is reported in the default User-Agent.
const Version = "0.1.0"

const (
	DefaultScheme    = "https"
	DefaultHost      = "api.discogs.com"
	DefaultBasePath  = "/"
	DefaultPerPage   = 50
	DefaultUserAgent = "discogs-harvester/" + Version + " +https://github.com/samvad-hq/discogs-harvester"

	// MaxPerPage is the largest per_page the API honours. It is not enforced locally.
	MaxPerPage = 100
)

// Config holds the client settings. Zero values fall back to the defaults above.
type Config struct {
	Scheme         string `json:"scheme" yaml:"scheme"`
	Host           string `json:"host" yaml:"host"`
	BasePath       string `json:"base_path" yaml:"base_path"`
	DefaultPerPage int    `json:"default_per_page" yaml:"default_per_page"`
	UserAgent      string `json:"user_agent" yaml:"user_agent"`
	AccessKey      string `json:"-" yaml:"-"`
	AccessSecret   string `json:"-" yaml:"-"`
}

func normalizeConfig(cfg Config) Config {
	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultBasePath
	}
	if cfg.DefaultPerPage <= 0 {
		cfg.DefaultPerPage = DefaultPerPage
	}
	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return cfg
}
