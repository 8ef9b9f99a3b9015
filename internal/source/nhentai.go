package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"comicarr/internal/domain"

	"github.com/rs/zerolog"
)

const (
	nhentaiSite = "nhentai"

	nhentaiUnknownTagType = "unknown"
)

var (
	nhentaiGalleryPattern   = regexp.MustCompile(`(?s)window\._gallery\s*=\s*JSON\.parse\("(.*?)"\)`)
	nhentaiMediaURLPattern  = regexp.MustCompile(`media_url:\s*'([^']*)'`)
	nhentaiStartPagePattern = regexp.MustCompile(`start_page:\s*(\d+)`)
	nhentaiURLPattern       = regexp.MustCompile(`/g/([0-9]+)`)
)

type nhentai struct {
	ReaderURL string
	Fetcher   domain.Fetcher
	log       zerolog.Logger
}

// nhentaiReader is the intermediate record scraped from a reader page.
type nhentaiReader struct {
	Host      string
	MediaURL  string
	Gallery   nhentaiGallery
	StartPage int
}

type nhentaiGallery struct {
	ID           int           `json:"id"`
	MediaID      string        `json:"media_id"`
	Title        nhentaiTitle  `json:"title"`
	Images       nhentaiImages `json:"images"`
	Scanlator    string        `json:"scanlator"`
	UploadDate   float64       `json:"upload_date"`
	Tags         []nhentaiTag  `json:"tags"`
	NumPages     int           `json:"num_pages"`
	NumFavorites int           `json:"num_favorites"`
}

type nhentaiTitle struct {
	English  *string `json:"english"`
	Japanese *string `json:"japanese"`
	Pretty   string  `json:"pretty"`
}

type nhentaiImages struct {
	Pages     []nhentaiImage `json:"pages"`
	Cover     nhentaiImage   `json:"cover"`
	Thumbnail nhentaiImage   `json:"thumbnail"`
}

type nhentaiImage struct {
	Type   imageType `json:"t"`
	Width  int       `json:"w"`
	Height int       `json:"h"`
}

type nhentaiTag struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

type imageType int

const (
	imageJpeg imageType = iota
	imagePng
	imageGif
)

func (t *imageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "j":
		*t = imageJpeg
	case "p":
		*t = imagePng
	case "g":
		*t = imageGif
	default:
		return fmt.Errorf("unknown image type %q", s)
	}

	return nil
}

// Extension returns the file extension used on the image cdn.
func (t imageType) Extension() string {
	switch t {
	case imagePng:
		return "png"
	case imageGif:
		return "gif"
	default:
		return "jpg"
	}
}

func NewNHentai(readerURL string, opts Options) domain.Extractor {
	return &nhentai{
		ReaderURL: readerURL,
		Fetcher:   newFetcher(opts),
		log:       opts.Log.With().Str("site", nhentaiSite).Logger(),
	}
}

func (n *nhentai) String() string {
	return "nhentai"
}

func (n *nhentai) Site() string {
	return nhentaiSite
}

func (n *nhentai) ValidateInput() error {
	if !nhentaiURLPattern.MatchString(n.ReaderURL) {
		return domain.NewParseError(nhentaiSite, "reader url", domain.ErrURLPatternMismatch,
			fmt.Errorf("expected .../g/<id>/, got %q", n.ReaderURL))
	}

	return nil
}

func (n *nhentai) Extract(ctx context.Context) (domain.Record, error) {
	if err := n.ValidateInput(); err != nil {
		return nil, err
	}

	u, err := url.Parse(n.ReaderURL)
	if err != nil {
		return nil, domain.NewParseError(nhentaiSite, "reader url", domain.ErrURLPatternMismatch, err)
	}

	page, err := n.Fetcher.GetText(ctx, n.ReaderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get reader page: %w", err)
	}

	n.log.Trace().Int("bytes", len(page)).Msg("fetched reader page")

	reader, err := parseNHentaiReader(page)
	if err != nil {
		return nil, err
	}

	reader.Host = strings.TrimPrefix(u.Hostname(), "www.")

	return reader, nil
}

// parseNHentaiReader pulls the embedded gallery object and the reader
// settings out of a reader page.
func parseNHentaiReader(page string) (*nhentaiReader, error) {
	gallery, err := parseNHentaiGallery(page)
	if err != nil {
		return nil, err
	}

	mediaMatch := nhentaiMediaURLPattern.FindStringSubmatch(page)
	if len(mediaMatch) < 2 {
		return nil, domain.NewParseError(nhentaiSite, "media_url", domain.ErrMissingFragment, nil)
	}

	mediaURL, err := url.Parse(mediaMatch[1])
	if err != nil || !mediaURL.IsAbs() {
		return nil, domain.NewParseError(nhentaiSite, "media_url", domain.ErrDecodeFailure,
			fmt.Errorf("invalid media url %q", mediaMatch[1]))
	}

	startMatch := nhentaiStartPagePattern.FindStringSubmatch(page)
	if len(startMatch) < 2 {
		return nil, domain.NewParseError(nhentaiSite, "start_page", domain.ErrMissingFragment, nil)
	}

	startPage, err := strconv.Atoi(startMatch[1])
	if err != nil {
		return nil, domain.NewParseError(nhentaiSite, "start_page", domain.ErrDecodeFailure, err)
	}

	return &nhentaiReader{
		MediaURL:  mediaMatch[1],
		Gallery:   gallery,
		StartPage: startPage,
	}, nil
}

func parseNHentaiGallery(page string) (nhentaiGallery, error) {
	match := nhentaiGalleryPattern.FindStringSubmatch(page)
	if len(match) < 2 {
		return nhentaiGallery{}, domain.NewParseError(nhentaiSite, "window._gallery", domain.ErrMissingFragment, nil)
	}

	var gallery nhentaiGallery
	if err := json.Unmarshal([]byte(unescapeJSString(match[1])), &gallery); err != nil {
		return nhentaiGallery{}, domain.NewParseError(nhentaiSite, "window._gallery", domain.ErrDecodeFailure, err)
	}

	return gallery, nil
}

// unescapeJSString decodes the body of a double quoted JavaScript string.
// Bodies that are not valid JSON strings only get their quotes restored.
func unescapeJSString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err == nil {
		return out
	}

	return strings.ReplaceAll(s, `\u0022`, `"`)
}

func (r *nhentaiReader) Site() string {
	return nhentaiSite
}

func (r *nhentaiReader) ComicInput() (domain.ComicInput, error) {
	g := r.Gallery

	host := r.Host
	if host == "" {
		host = "nhentai.net"
	}

	coverExt := g.Images.Cover.Type.Extension()
	cover := domain.Page{
		URL:      fmt.Sprintf("https://t.%s/galleries/%s/cover.%s", host, g.MediaID, coverExt),
		FileName: "cover." + coverExt,
		Width:    intPtr(g.Images.Cover.Width),
		Height:   intPtr(g.Images.Cover.Height),
	}

	pages := make([]domain.Page, 0, len(g.Images.Pages))
	for i, image := range g.Images.Pages {
		ext := image.Type.Extension()

		pages = append(pages, domain.Page{
			URL:      fmt.Sprintf("%sgalleries/%s/%d.%s", r.MediaURL, g.MediaID, i+1, ext),
			FileName: fmt.Sprintf("%d.%s", i+1, ext),
			Width:    intPtr(image.Width),
			Height:   intPtr(image.Height),
		})
	}

	tags := make([]domain.RawTag, 0, len(g.Tags))
	for _, tag := range g.Tags {
		namespace := tag.Type
		if namespace == "" {
			// untyped tags must not pass as flat tags
			namespace = nhentaiUnknownTagType
		}
		tags = append(tags, domain.RawTag{Namespace: namespace, Value: tag.Name})
	}

	return domain.ComicInput{
		Site:       nhentaiSite,
		ID:         strconv.Itoa(g.ID),
		Title:      g.Title.Pretty,
		UploadDate: g.UploadDate,
		Tags:       tags,
		Pages:      pages,
		Cover:      cover,
	}, nil
}
