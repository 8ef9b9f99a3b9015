package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"comicarr/internal/domain"

	"github.com/gocolly/colly"
	"github.com/rs/zerolog"
)

const (
	ehentaiSite   = "e-hentai"
	ehentaiAPIURL = "https://api.e-hentai.org/api.php"

	ehentaiLinkSelector  = "#gdt > .gdtm > div > a, #gdt > .gdtl > a, #gdt > a"
	ehentaiImageSelector = "#img"
)

var ehentaiGalleryPattern = regexp.MustCompile(`/g/([0-9]+)/([a-zA-Z0-9]+)`)

type ehentai struct {
	GalleryURL  string
	APIURL      string
	Fetcher     domain.Fetcher
	Collector   *colly.Collector
	Parallelism int
	log         zerolog.Logger
}

type ehentaiAPIRequest struct {
	Method    string  `json:"method"`
	GIDList   [][]any `json:"gidlist"`
	Namespace int     `json:"namespace"`
}

type ehentaiAPIResponse struct {
	GMetadata []ehentaiMetadata `json:"gmetadata"`
}

type ehentaiMetadata struct {
	GID          int      `json:"gid"`
	Token        string   `json:"token"`
	ArchiverKey  string   `json:"archiver_key"`
	Title        string   `json:"title"`
	TitleJpn     string   `json:"title_jpn"`
	Category     string   `json:"category"`
	Thumb        string   `json:"thumb"`
	Uploader     string   `json:"uploader"`
	Posted       string   `json:"posted"`
	FileCount    string   `json:"filecount"`
	FileSize     int64    `json:"filesize"`
	Expunged     bool     `json:"expunged"`
	Rating       string   `json:"rating"`
	TorrentCount string   `json:"torrentcount"`
	Tags         []string `json:"tags"`
	Error        string   `json:"error"`
}

// ehentaiGallery is the intermediate record of a gallery: the API metadata
// plus the full size image urls in listing order.
type ehentaiGallery struct {
	Metadata  ehentaiMetadata
	ImageURLs []string
}

func NewEHentai(galleryURL string, opts Options) domain.Extractor {
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 4
	}

	return &ehentai{
		GalleryURL:  galleryURL,
		APIURL:      ehentaiAPIURL,
		Fetcher:     newFetcher(opts),
		Collector:   newCollector(opts),
		Parallelism: parallelism,
		log:         opts.Log.With().Str("site", ehentaiSite).Logger(),
	}
}

func (e *ehentai) String() string {
	return "E-Hentai"
}

func (e *ehentai) Site() string {
	return ehentaiSite
}

func (e *ehentai) ValidateInput() error {
	_, _, err := parseGalleryURL(e.GalleryURL)
	return err
}

func (e *ehentai) Extract(ctx context.Context) (domain.Record, error) {
	metadata, err := e.getMetadata(ctx)
	if err != nil {
		return nil, err
	}

	links, err := e.getPageLinks(ctx, metadata)
	if err != nil {
		return nil, err
	}

	imageURLs, err := e.getImageURLs(ctx, links)
	if err != nil {
		return nil, err
	}

	return &ehentaiGallery{
		Metadata:  metadata,
		ImageURLs: imageURLs,
	}, nil
}

// parseGalleryURL returns the gallery id and token of a .../g/<id>/<token> url.
func parseGalleryURL(galleryURL string) (int, string, error) {
	matches := ehentaiGalleryPattern.FindStringSubmatch(galleryURL)
	if len(matches) != 3 {
		return 0, "", domain.NewParseError(ehentaiSite, "gallery url", domain.ErrURLPatternMismatch,
			fmt.Errorf("expected .../g/<id>/<token>, got %q", galleryURL))
	}

	id, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, "", domain.NewParseError(ehentaiSite, "gallery url", domain.ErrURLPatternMismatch, err)
	}

	return id, matches[2], nil
}

func (e *ehentai) getMetadata(ctx context.Context) (ehentaiMetadata, error) {
	id, token, err := parseGalleryURL(e.GalleryURL)
	if err != nil {
		return ehentaiMetadata{}, err
	}

	req := ehentaiAPIRequest{
		Method:    "gdata",
		GIDList:   [][]any{{id, token}},
		Namespace: 1,
	}

	var resp ehentaiAPIResponse
	if err := e.Fetcher.PostJSON(ctx, e.APIURL, req, &resp); err != nil {
		return ehentaiMetadata{}, fmt.Errorf("failed to get gallery metadata: %w", err)
	}

	return firstMetadata(resp)
}

func firstMetadata(resp ehentaiAPIResponse) (ehentaiMetadata, error) {
	if len(resp.GMetadata) == 0 {
		return ehentaiMetadata{}, domain.NewParseError(ehentaiSite, "gmetadata", domain.ErrEmptyResult, nil)
	}

	metadata := resp.GMetadata[0]
	if metadata.Error != "" {
		return ehentaiMetadata{}, domain.NewParseError(ehentaiSite, "gmetadata", domain.ErrEmptyResult,
			fmt.Errorf("api error: %s", metadata.Error))
	}

	return metadata, nil
}

// getPageLinks walks the paginated gallery listing and returns every page
// link in document order.
func (e *ehentai) getPageLinks(ctx context.Context, metadata ehentaiMetadata) ([]string, error) {
	fileCount, err := strconv.Atoi(metadata.FileCount)
	if err != nil {
		fileCount = 0
	}

	var links []string
	seen := make(map[string]bool)

	c := e.Collector.Clone()

	c.OnHTML(ehentaiLinkSelector, func(el *colly.HTMLElement) {
		rawHref := strings.TrimSpace(el.Attr("href"))
		if rawHref == "" {
			return
		}

		href := el.Request.AbsoluteURL(rawHref)
		if href == "" || seen[href] {
			return
		}

		seen[href] = true
		links = append(links, href)
	})

	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		listingURL, err := listingPageURL(e.GalleryURL, page)
		if err != nil {
			return nil, err
		}

		before := len(links)
		if err := c.Visit(listingURL); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrNetworkFailure, listingURL, err)
		}

		e.log.Trace().Str("url", listingURL).Int("links", len(links)-before).Msg("visited gallery listing")

		if len(links) == before || fileCount == 0 || len(links) >= fileCount {
			break
		}
	}

	if len(links) == 0 {
		return nil, domain.NewParseError(ehentaiSite, ehentaiLinkSelector, domain.ErrMissingFragment,
			fmt.Errorf("no page links on %s", e.GalleryURL))
	}

	return links, nil
}

func listingPageURL(galleryURL string, page int) (string, error) {
	u, err := url.Parse(galleryURL)
	if err != nil {
		return "", domain.NewParseError(ehentaiSite, "gallery url", domain.ErrURLPatternMismatch, err)
	}

	if page == 0 {
		return u.String(), nil
	}

	q := u.Query()
	q.Set("p", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// getImageURLs visits every page link, possibly in parallel, and slots each
// full size image url back at the index of its link.
func (e *ehentai) getImageURLs(ctx context.Context, links []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	imageURLs := make([]string, len(links))

	var (
		mu   sync.Mutex
		errs []error
	)

	c := e.Collector.Clone()
	c.Async = true

	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: e.Parallelism}); err != nil {
		return nil, err
	}

	c.OnHTML(ehentaiImageSelector, func(el *colly.HTMLElement) {
		index, ok := el.Request.Ctx.GetAny("index").(int)
		if !ok {
			return
		}

		// an empty src would resolve to the page itself
		rawSrc := strings.TrimSpace(el.Attr("src"))
		if rawSrc == "" {
			return
		}

		src := el.Request.AbsoluteURL(rawSrc)

		mu.Lock()
		imageURLs[index] = src
		mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		errs = append(errs, fmt.Errorf("%w: %s: %w", domain.ErrNetworkFailure, r.Request.URL, err))
		mu.Unlock()
	})

	for i, link := range links {
		reqCtx := colly.NewContext()
		reqCtx.Put("index", i)

		if err := c.Request(http.MethodGet, link, nil, reqCtx, nil); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrNetworkFailure, link, err)
		}
	}

	c.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}

	for i, imageURL := range imageURLs {
		if imageURL == "" {
			return nil, domain.NewParseError(ehentaiSite, ehentaiImageSelector, domain.ErrMissingFragment,
				fmt.Errorf("no image on page %s", links[i]))
		}
	}

	return imageURLs, nil
}

func (g *ehentaiGallery) Site() string {
	return ehentaiSite
}

func (g *ehentaiGallery) ComicInput() (domain.ComicInput, error) {
	posted, err := strconv.ParseFloat(g.Metadata.Posted, 64)
	if err != nil {
		return domain.ComicInput{}, domain.NewParseError(ehentaiSite, "gmetadata.posted", domain.ErrDecodeFailure, err)
	}

	coverName, err := fileName(g.Metadata.Thumb)
	if err != nil {
		return domain.ComicInput{}, domain.NewParseError(ehentaiSite, "gmetadata.thumb", domain.ErrDecodeFailure, err)
	}

	pages := make([]domain.Page, 0, len(g.ImageURLs))
	used := make(map[string]bool, len(g.ImageURLs))

	for i, imageURL := range g.ImageURLs {
		name, err := fileName(imageURL)
		if err != nil {
			return domain.ComicInput{}, domain.NewParseError(ehentaiSite, ehentaiImageSelector, domain.ErrDecodeFailure, err)
		}

		// galleries may reuse a file name, keep them apart by position
		if used[name] {
			name = fmt.Sprintf("%d_%s", i+1, name)
		}
		used[name] = true

		pages = append(pages, domain.Page{
			URL:      imageURL,
			FileName: name,
		})
	}

	tags := make([]domain.RawTag, 0, len(g.Metadata.Tags)+1)
	if g.Metadata.Category != "" {
		tags = append(tags, domain.RawTag{Namespace: "category", Value: g.Metadata.Category})
	}
	for _, tag := range g.Metadata.Tags {
		tags = append(tags, domain.ParseRawTag(tag))
	}

	return domain.ComicInput{
		Site:       ehentaiSite,
		ID:         strconv.Itoa(g.Metadata.GID),
		Title:      g.Metadata.Title,
		UploadDate: posted,
		Tags:       tags,
		Pages:      pages,
		Cover: domain.Page{
			URL:      g.Metadata.Thumb,
			FileName: coverName,
		},
	}, nil
}
