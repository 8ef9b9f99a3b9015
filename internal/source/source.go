package source

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"comicarr/internal/domain"
	"comicarr/internal/sharedhttp"

	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
	"github.com/rs/zerolog"
)

// Options carries the collaborators every source is built with.
type Options struct {
	Fetcher     domain.Fetcher
	Timeout     time.Duration
	UserAgent   string
	Parallelism int
	Log         zerolog.Logger
}

// New picks the source responsible for rawURL by its host.
func New(rawURL string, opts Options) (domain.Extractor, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrURLPatternMismatch, rawURL, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch host {
	case "e-hentai.org":
		return NewEHentai(rawURL, opts), nil
	case "nhentai.net":
		return NewNHentai(rawURL, opts), nil
	case "pixiv.net":
		return NewPixiv(rawURL, opts), nil
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return NewYoutube(rawURL, opts), nil
	default:
		return nil, fmt.Errorf("%w: no source for host %q", domain.ErrURLPatternMismatch, u.Host)
	}
}

func newCollector(opts Options) *colly.Collector {
	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
	)

	if opts.UserAgent != "" {
		collector.UserAgent = opts.UserAgent
	} else {
		extensions.RandomUserAgent(collector)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	collector.SetRequestTimeout(timeout)
	collector.WithTransport(sharedhttp.Transport)

	return collector
}

func newFetcher(opts Options) domain.Fetcher {
	if opts.Fetcher != nil {
		return opts.Fetcher
	}

	return sharedhttp.NewClient(sharedhttp.Options{
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
	}, opts.Log)
}

// fileName returns the last path segment of rawURL.
func fileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("url has no file name: %s", rawURL)
	}

	return name, nil
}

func intPtr(v int) *int {
	return &v
}
