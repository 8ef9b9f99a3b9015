package sharedhttp

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"comicarr/internal/domain"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return NewClient(Options{
		Timeout:   5 * time.Second,
		UserAgent: "comicarr-test",
		Attempts:  3,
		Delay:     time.Millisecond,
		MaxJitter: time.Millisecond,
		Transport: http.DefaultTransport,
	}, zerolog.Nop())
}

func TestClient_GetText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "comicarr-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("caf\xe9"))
	}))
	defer srv.Close()

	text, err := testClient().GetText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestClient_Decompress(t *testing.T) {
	const body = "<html>compressed</html>"

	tests := []struct {
		encoding string
		encode   func(w io.Writer) io.WriteCloser
	}{
		{"gzip", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }},
		{"br", func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) }},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			var buf bytes.Buffer
			zw := tt.encode(&buf)
			_, err := zw.Write([]byte(body))
			require.NoError(t, err)
			require.NoError(t, zw.Close())

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", tt.encoding)
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write(buf.Bytes())
			}))
			defer srv.Close()

			text, err := testClient().GetText(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, body, text)
		})
	}
}

func TestDecompress_Closers(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("page"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(bytes.NewReader(buf.Bytes())),
	}

	r, err := decompress(resp)
	require.NoError(t, err)
	assert.IsType(t, &gzip.Reader{}, r)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "page", string(data))
	assert.NoError(t, r.Close())

	// closing a plain body wrapper leaves the response body to its owner
	body := &trackingBody{Reader: bytes.NewReader([]byte("plain"))}
	r, err = decompress(&http.Response{Header: http.Header{}, Body: body})
	require.NoError(t, err)
	assert.NoError(t, r.Close())
	assert.False(t, body.closed)
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := testClient().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ForbiddenIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetworkFailure))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ExhaustedRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient().GetText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetworkFailure))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"method":"gdata"}`, string(body))

		_, _ = w.Write([]byte(`{"answer":42}`))
	}))
	defer srv.Close()

	var out struct {
		Answer int `json:"answer"`
	}
	err := testClient().PostJSON(context.Background(), srv.URL, map[string]string{"method": "gdata"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Answer)
}

func TestClient_PostJSON_DecodeFailure(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient().PostJSON(context.Background(), srv.URL, map[string]string{}, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDecodeFailure))
	assert.False(t, errors.Is(err, domain.ErrNetworkFailure))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCheckStatusCode(t *testing.T) {
	assert.NoError(t, CheckStatusCode(http.StatusOK))
	assert.Error(t, CheckStatusCode(http.StatusTooManyRequests))
	assert.Error(t, CheckStatusCode(http.StatusNotFound))
	assert.Error(t, CheckStatusCode(http.StatusTeapot))
}
