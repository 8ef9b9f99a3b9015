package source

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"comicarr/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	pixivSite = "pixiv"

	pixivPreloadSelector = "#meta-preload-data"
	pixivPreloadAttr     = "content"
)

var pixivArtworkPattern = regexp.MustCompile(`/artworks/([0-9]+)`)

var pixivIllustTypes = map[int]string{
	0: "illustration",
	1: "manga",
	2: "ugoira",
}

type pixiv struct {
	ArtworkURL string
	Fetcher    domain.Fetcher
	log        zerolog.Logger
}

// pixivArtwork is the intermediate record of an artwork page.
type pixivArtwork struct {
	ID      string
	Preload pixivPreload
}

type pixivPreload struct {
	Timestamp string                 `json:"timestamp"`
	Illust    map[string]pixivIllust `json:"illust"`
	User      map[string]pixivUser   `json:"user"`
}

type pixivIllust struct {
	IllustID       string          `json:"illustId"`
	IllustTitle    string          `json:"illustTitle"`
	IllustComment  string          `json:"illustComment"`
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	IllustType     int             `json:"illustType"`
	CreateDate     string          `json:"createDate"`
	UploadDate     string          `json:"uploadDate"`
	Restrict       int             `json:"restrict"`
	XRestrict      int             `json:"xRestrict"`
	Sl             int             `json:"sl"`
	URLs           pixivURLs       `json:"urls"`
	Tags           pixivTags       `json:"tags"`
	Alt            string          `json:"alt"`
	StorableTags   []string        `json:"storableTags"`
	UserID         string          `json:"userId"`
	UserName       string          `json:"userName"`
	UserAccount    string          `json:"userAccount"`
	LikeData       bool            `json:"likeData"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	PageCount      int             `json:"pageCount"`
	BookmarkCount  int             `json:"bookmarkCount"`
	LikeCount      int             `json:"likeCount"`
	CommentCount   int             `json:"commentCount"`
	ResponseCount  int             `json:"responseCount"`
	ViewCount      int             `json:"viewCount"`
	IsHowto        bool            `json:"isHowto"`
	IsOriginal     bool            `json:"isOriginal"`
	IsBookmarkable bool            `json:"isBookmarkable"`
	IsUnlisted     bool            `json:"isUnlisted"`
	SeriesNavData  *pixivSeriesNav `json:"seriesNavData"`
}

type pixivURLs struct {
	Mini     string `json:"mini"`
	Thumb    string `json:"thumb"`
	Small    string `json:"small"`
	Regular  string `json:"regular"`
	Original string `json:"original"`
}

type pixivTags struct {
	AuthorID string     `json:"authorId"`
	IsLocked bool       `json:"isLocked"`
	Tags     []pixivTag `json:"tags"`
	Writable bool       `json:"writable"`
}

type pixivTag struct {
	Tag       string  `json:"tag"`
	Locked    bool    `json:"locked"`
	Deletable bool    `json:"deletable"`
	UserID    *string `json:"userId"`
	UserName  *string `json:"userName"`
}

type pixivSeriesNav struct {
	SeriesType string `json:"seriesType"`
	SeriesID   string `json:"seriesId"`
	Title      string `json:"title"`
	Order      int    `json:"order"`
	IsWatched  bool   `json:"isWatched"`
}

type pixivUser struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	ImageBig      string `json:"imageBig"`
	Premium       bool   `json:"premium"`
	IsFollowed    bool   `json:"isFollowed"`
	IsMypixiv     bool   `json:"isMypixiv"`
	IsBlocking    bool   `json:"isBlocking"`
	Partial       int    `json:"partial"`
	AcceptRequest bool   `json:"acceptRequest"`
}

func NewPixiv(artworkURL string, opts Options) domain.Extractor {
	return &pixiv{
		ArtworkURL: artworkURL,
		Fetcher:    newFetcher(opts),
		log:        opts.Log.With().Str("site", pixivSite).Logger(),
	}
}

func (p *pixiv) String() string {
	return "pixiv"
}

func (p *pixiv) Site() string {
	return pixivSite
}

func (p *pixiv) ValidateInput() error {
	_, err := artworkID(p.ArtworkURL)
	return err
}

func artworkID(artworkURL string) (string, error) {
	matches := pixivArtworkPattern.FindStringSubmatch(artworkURL)
	if len(matches) != 2 {
		return "", domain.NewParseError(pixivSite, "artwork url", domain.ErrURLPatternMismatch,
			fmt.Errorf("expected .../artworks/<id>, got %q", artworkURL))
	}

	return matches[1], nil
}

func (p *pixiv) Extract(ctx context.Context) (domain.Record, error) {
	id, err := artworkID(p.ArtworkURL)
	if err != nil {
		return nil, err
	}

	page, err := p.Fetcher.GetText(ctx, p.ArtworkURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get artwork page: %w", err)
	}

	preload, err := parsePixivPreload(page)
	if err != nil {
		return nil, err
	}

	p.log.Trace().Int("illusts", len(preload.Illust)).Int("users", len(preload.User)).Msg("decoded preload data")

	return &pixivArtwork{
		ID:      id,
		Preload: preload,
	}, nil
}

// parsePixivPreload decodes the preload json stored in the content
// attribute of the meta-preload-data element.
func parsePixivPreload(page string) (pixivPreload, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return pixivPreload{}, domain.NewParseError(pixivSite, "html", domain.ErrDecodeFailure, err)
	}

	data, ok := doc.Find(pixivPreloadSelector).First().Attr(pixivPreloadAttr)
	if !ok {
		return pixivPreload{}, domain.NewParseError(pixivSite, pixivPreloadSelector+"["+pixivPreloadAttr+"]", domain.ErrMissingFragment, nil)
	}

	var preload pixivPreload
	if err := json.Unmarshal([]byte(data), &preload); err != nil {
		return pixivPreload{}, domain.NewParseError(pixivSite, pixivPreloadSelector+"["+pixivPreloadAttr+"]", domain.ErrDecodeFailure, err)
	}

	return preload, nil
}

func (a *pixivArtwork) Site() string {
	return pixivSite
}

func (a *pixivArtwork) ComicInput() (domain.ComicInput, error) {
	illust, ok := a.Preload.Illust[a.ID]
	if !ok {
		return domain.ComicInput{}, domain.NewParseError(pixivSite, "illust."+a.ID, domain.ErrMissingFragment, nil)
	}

	uploaded, err := time.Parse(time.RFC3339, illust.UploadDate)
	if err != nil {
		return domain.ComicInput{}, domain.NewParseError(pixivSite, "illust.uploadDate", domain.ErrDecodeFailure, err)
	}

	pages, err := pixivPages(illust)
	if err != nil {
		return domain.ComicInput{}, err
	}

	coverURL := illust.URLs.Thumb
	if coverURL == "" {
		coverURL = illust.URLs.Small
	}

	coverName, err := fileName(coverURL)
	if err != nil {
		return domain.ComicInput{}, domain.NewParseError(pixivSite, "illust.urls.thumb", domain.ErrDecodeFailure, err)
	}

	author := illust.UserName
	if user, ok := a.Preload.User[illust.UserID]; ok && user.Name != "" {
		author = user.Name
	}

	tags := make([]domain.RawTag, 0, len(illust.Tags.Tags)+2)
	if author != "" {
		tags = append(tags, domain.RawTag{Namespace: "artist", Value: author})
	}
	if kind, ok := pixivIllustTypes[illust.IllustType]; ok {
		tags = append(tags, domain.RawTag{Namespace: "type", Value: kind})
	}
	for _, tag := range illust.Tags.Tags {
		tags = append(tags, domain.RawTag{Value: tag.Tag})
	}

	title := illust.Title
	if title == "" {
		title = illust.IllustTitle
	}

	return domain.ComicInput{
		Site:       pixivSite,
		ID:         a.ID,
		Title:      title,
		UploadDate: float64(uploaded.Unix()),
		Tags:       tags,
		Pages:      pages,
		Cover: domain.Page{
			URL:      coverURL,
			FileName: coverName,
		},
	}, nil
}

// pixivPages derives every page url from the original url of the first
// page, which ends in _p0.<ext>.
func pixivPages(illust pixivIllust) ([]domain.Page, error) {
	original := illust.URLs.Original
	if original == "" {
		return nil, domain.NewParseError(pixivSite, "illust.urls.original", domain.ErrMissingFragment, nil)
	}

	count := illust.PageCount
	if count < 1 {
		count = 1
	}

	if count > 1 && !strings.Contains(original, "_p0.") {
		return nil, domain.NewParseError(pixivSite, "illust.urls.original", domain.ErrDecodeFailure,
			fmt.Errorf("no page index in %q", original))
	}

	pages := make([]domain.Page, 0, count)
	for i := 0; i < count; i++ {
		pageURL := strings.Replace(original, "_p0.", fmt.Sprintf("_p%d.", i), 1)

		name, err := fileName(pageURL)
		if err != nil {
			return nil, domain.NewParseError(pixivSite, "illust.urls.original", domain.ErrDecodeFailure, err)
		}

		page := domain.Page{
			URL:      pageURL,
			FileName: name,
		}

		if i == 0 && illust.Width > 0 && illust.Height > 0 {
			page.Width = intPtr(illust.Width)
			page.Height = intPtr(illust.Height)
		}

		pages = append(pages, page)
	}

	return pages, nil
}
