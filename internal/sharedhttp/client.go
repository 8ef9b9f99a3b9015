package sharedhttp

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"comicarr/internal/domain"

	"github.com/andybalholm/brotli"
	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

const DefaultUserAgent = "comicarr"

type Options struct {
	Timeout   time.Duration
	UserAgent string
	Attempts  uint
	Delay     time.Duration
	MaxJitter time.Duration
	Transport http.RoundTripper
}

// Client is the fetch capability used by every source. Failed requests are
// retried; exhausted retries surface as domain.ErrNetworkFailure.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	attempts  uint
	delay     time.Duration
	maxJitter time.Duration
	log       zerolog.Logger
}

func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.Delay == 0 {
		opts.Delay = 3 * time.Second
	}
	if opts.MaxJitter == 0 {
		opts.MaxJitter = time.Second
	}
	if opts.Transport == nil {
		opts.Transport = Transport
	}

	return &Client{
		HTTP: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		UserAgent: opts.UserAgent,
		attempts:  opts.Attempts,
		delay:     opts.Delay,
		maxJitter: opts.MaxJitter,
		log:       log.With().Str("module", "http").Logger(),
	}
}

// Get returns the decompressed body of url.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.get(ctx, url)
	return body, err
}

// GetText returns the body of url converted to UTF-8.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, contentType, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrDecodeFailure, url, err)
	}

	text, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrDecodeFailure, url, err)
	}

	return string(text), nil
}

// PostJSON posts body encoded as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	var decodeErr error

	retryErr := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		c.setHeaders(req)

		data, _, err := c.do(req)
		if err != nil {
			return err
		}

		if err := json.Unmarshal(data, out); err != nil {
			decodeErr = err
			return retry.Unrecoverable(err)
		}

		return nil
	}, c.retryOptions(ctx, url)...)

	if decodeErr != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrDecodeFailure, url, decodeErr)
	}

	if retryErr != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrNetworkFailure, url, retryErr)
	}

	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	var (
		body        []byte
		contentType string
	)

	retryErr := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
		}

		c.setHeaders(req)

		body, contentType, err = c.do(req)
		return err
	}, c.retryOptions(ctx, url)...)

	if retryErr != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", domain.ErrNetworkFailure, url, retryErr)
	}

	return body, contentType, nil
}

func (c *Client) do(req *http.Request) ([]byte, string, error) {
	resp, err := ExecRequest(c.HTTP, req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	r, err := decompress(resp)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()

	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")
}

func (c *Client) retryOptions(ctx context.Context, url string) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Delay(c.delay),
		retry.Attempts(c.attempts),
		retry.MaxJitter(c.maxJitter),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug().Err(err).Str("url", url).Msgf("request failed, attempt %d/%d", n+1, c.attempts)
		}),
	}
}

// decompress unwraps gzip and brotli bodies. Go only handles gzip on its own
// when it set Accept-Encoding itself.
func decompress(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		return r, nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
