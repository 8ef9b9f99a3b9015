package domain

import "context"

// Extractor fetches and parses one site's page into its intermediate record.
type Extractor interface {
	String() string
	Site() string
	ValidateInput() error
	Extract(context.Context) (Record, error)
}

// Record is a site specific intermediate record.
type Record interface {
	Site() string
}

// ComicRecord is a record that can be normalized into a Comic.
type ComicRecord interface {
	Record
	ComicInput() (ComicInput, error)
}

// StreamRecord is a record carrying stream formats instead of pages.
type StreamRecord interface {
	Record
	Formats() []Format
	AdaptiveFormats() []Format
}

// Fetcher is the network capability the extractors depend on.
type Fetcher interface {
	GetText(ctx context.Context, url string) (string, error)
	PostJSON(ctx context.Context, url string, body any, out any) error
}
