package app

import (
	"github.com/samvad-hq/discogs-harvester/internal/config"
	"github.com/samvad-hq/discogs-harvester/internal/logger"
	"github.com/samvad-hq/discogs-harvester/pkg/discogs"
	"github.com/samvad-hq/discogs-harvester/pkg/httpclient"
)

// NewDiscogsClient builds the API client from config. hc may be nil to use
// the default resty transport.
func NewDiscogsClient(cfg *config.Config, hc httpclient.Client, log logger.Logger) *discogs.Client {
	if hc == nil {
		hc = httpclient.NewRestyClient(cfg.Discogs.HTTPTimeout)
	}
	opts := []discogs.Option{discogs.WithHTTPClient(hc)}
	if log != nil {
		opts = append(opts, discogs.WithLogger(log))
	}
	return discogs.New(discogs.Config{
		Scheme:         cfg.Discogs.Scheme,
		Host:           cfg.Discogs.Host,
		BasePath:       cfg.Discogs.BasePath,
		DefaultPerPage: cfg.Discogs.PerPage,
		UserAgent:      cfg.Discogs.UserAgent,
		AccessKey:      cfg.Discogs.Key,
		AccessSecret:   cfg.Discogs.Secret,
	}, opts...)
}
