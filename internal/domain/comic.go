package domain

import "strings"

// Comic is the unified record every comic site is normalized into.
type Comic struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
	Characters []string `json:"characters"`
	Groups     []string `json:"groups"`
	// UploadDate is in unix seconds.
	UploadDate float64  `json:"uploadDate"`
	Languages  []string `json:"languages"`
	Translated bool     `json:"translated"`
	Pages      []Page   `json:"pages"`
	Cover      Page     `json:"cover"`
	Site       string   `json:"site"`
	// ID is only unique in combination with Site.
	ID string `json:"id"`
}

type Page struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Width    *int   `json:"width,omitempty"`
	Height   *int   `json:"height,omitempty"`
}

// Category is the unified bucket a classified tag ends up in.
type Category int

const (
	CategoryTag Category = iota
	CategoryAuthor
	CategoryCategory
	CategoryCharacter
	CategoryGroup
	CategoryLanguage
	CategoryTranslated
)

func (c Category) String() string {
	switch c {
	case CategoryTag:
		return "tag"
	case CategoryAuthor:
		return "author"
	case CategoryCategory:
		return "category"
	case CategoryCharacter:
		return "character"
	case CategoryGroup:
		return "group"
	case CategoryLanguage:
		return "language"
	case CategoryTranslated:
		return "translated"
	default:
		return "unknown"
	}
}

// RawTag is a tag as the site exposes it. An empty Namespace means a flat tag.
type RawTag struct {
	Namespace string
	Value     string
}

func (t RawTag) String() string {
	if t.Namespace == "" {
		return t.Value
	}

	return t.Namespace + ":" + t.Value
}

// ParseRawTag splits "namespace:value" on the first colon.
func ParseRawTag(s string) RawTag {
	namespace, value, ok := strings.Cut(s, ":")
	if !ok {
		return RawTag{Value: s}
	}

	return RawTag{Namespace: namespace, Value: value}
}

// ComicInput is the site neutral view of an intermediate record with all
// resource URLs already resolved.
type ComicInput struct {
	Site       string
	ID         string
	Title      string
	UploadDate float64
	Tags       []RawTag
	Pages      []Page
	Cover      Page
}
