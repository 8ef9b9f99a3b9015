package cmd

import (
	"context"
	"fmt"
	"time"

	"comicarr/internal/buildinfo"
	"comicarr/internal/config"
	"comicarr/internal/domain"
	"comicarr/internal/logger"
	"comicarr/internal/normalize"
	"comicarr/internal/sharedhttp"
	"comicarr/internal/source"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// app bundles what every command needs to resolve a url.
type app struct {
	cfg    *config.AppConfig
	log    logger.Logger
	zlog   zerolog.Logger
	client *sharedhttp.Client
}

func newApp() (*app, error) {
	cfg, err := config.New(configPath, buildinfo.Version)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Config)
	cfg.DynamicReload(log)

	zlog := log.With().Str("run", uuid.NewString()).Logger()

	userAgent := cfg.Config.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.UserAgent
	}

	client := sharedhttp.NewClient(sharedhttp.Options{
		Timeout:   time.Duration(cfg.Config.RequestTimeout) * time.Second,
		UserAgent: userAgent,
		Attempts:  uint(cfg.Config.RetryAttempts),
	}, zlog)

	return &app{
		cfg:    cfg,
		log:    log,
		zlog:   zlog,
		client: client,
	}, nil
}

func (a *app) extract(ctx context.Context, rawURL string) (domain.Record, error) {
	s, err := source.New(rawURL, source.Options{
		Fetcher:     a.client,
		Timeout:     time.Duration(a.cfg.Config.RequestTimeout) * time.Second,
		UserAgent:   a.cfg.Config.UserAgent,
		Parallelism: a.cfg.Config.GalleryParallelism,
		Log:         a.zlog,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ValidateInput(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	a.zlog.Debug().Str("site", s.Site()).Str("url", rawURL).Msgf("resolving with %s", s)

	rec, err := s.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract from %s: %w", s, err)
	}

	return rec, nil
}

func (a *app) comic(ctx context.Context, rawURL string) (domain.Comic, error) {
	rec, err := a.extract(ctx, rawURL)
	if err != nil {
		return domain.Comic{}, err
	}

	comicRec, ok := rec.(domain.ComicRecord)
	if !ok {
		return domain.Comic{}, errors.Errorf("%s does not resolve to a comic, try the formats command", rec.Site())
	}

	return normalize.FromRecord(comicRec, a.onDrop)
}

func (a *app) onDrop(site string, tag domain.RawTag) {
	a.zlog.Warn().Str("site", site).Str("namespace", tag.Namespace).Str("tag", tag.Value).Msg("dropped tag with unknown namespace")
}
