package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrURLPatternMismatch = errors.New("url pattern mismatch")
	ErrMissingFragment    = errors.New("missing fragment")
	ErrDecodeFailure      = errors.New("decode failure")
	ErrEmptyResult        = errors.New("empty result")
	ErrNetworkFailure     = errors.New("network failure")
)

// ParseError reports which expected fragment of a site page could not be
// extracted. It matches both Kind and Err with errors.Is.
type ParseError struct {
	Site     string
	Fragment string
	Kind     error
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %v", e.Site, e.Fragment, e.Kind)
	}

	return fmt.Sprintf("%s: %s: %v: %v", e.Site, e.Fragment, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func NewParseError(site, fragment string, kind, err error) *ParseError {
	return &ParseError{
		Site:     site,
		Fragment: fragment,
		Kind:     kind,
		Err:      err,
	}
}
