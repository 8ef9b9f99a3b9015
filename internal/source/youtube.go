package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"comicarr/internal/domain"

	"github.com/rs/zerolog"
)

const youtubeSite = "youtube"

var youtubePlayerResponsePattern = regexp.MustCompile(`(?s)ytInitialPlayerResponse\s*=\s*(\{.+?\});`)

type youtube struct {
	VideoURL string
	Fetcher  domain.Fetcher
	log      zerolog.Logger
}

// youtubeVideo is the intermediate record of a watch page.
type youtubeVideo struct {
	VideoID          string
	Title            string
	ExpiresInSeconds string
	formats          []domain.Format
	adaptiveFormats  []domain.Format
}

type youtubePlayerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	StreamingData *struct {
		ExpiresInSeconds string            `json:"expiresInSeconds"`
		Formats          []json.RawMessage `json:"formats"`
		AdaptiveFormats  []json.RawMessage `json:"adaptiveFormats"`
	} `json:"streamingData"`
	VideoDetails struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
	} `json:"videoDetails"`
}

// formatShape identifies a descriptor variant by the keys it must and must
// not carry.
type formatShape struct {
	kind      domain.FormatKind
	required  []string
	forbidden []string
}

func (s formatShape) matches(fields map[string]json.RawMessage) bool {
	for _, key := range s.required {
		if _, ok := fields[key]; !ok {
			return false
		}
	}

	for _, key := range s.forbidden {
		if _, ok := fields[key]; ok {
			return false
		}
	}

	return true
}

// Shapes are tried in order, the first match wins.
var (
	adaptiveFormatShapes = []formatShape{
		{
			kind:      domain.FormatVideo,
			required:  []string{"itag", "url", "mimeType", "bitrate", "width", "height"},
			forbidden: []string{"signatureCipher"},
		},
		{
			kind:      domain.FormatCipheredVideo,
			required:  []string{"itag", "signatureCipher", "mimeType", "bitrate", "width", "height"},
			forbidden: []string{"url"},
		},
		{
			kind:      domain.FormatAudio,
			required:  []string{"itag", "url", "mimeType", "bitrate", "audioSampleRate", "audioChannels"},
			forbidden: []string{"signatureCipher", "width", "height"},
		},
		{
			kind:      domain.FormatCipheredAudio,
			required:  []string{"itag", "signatureCipher", "mimeType", "bitrate", "audioSampleRate", "audioChannels"},
			forbidden: []string{"url", "width", "height"},
		},
	}

	progressiveFormatShapes = []formatShape{
		{
			kind:      domain.FormatMuxed,
			required:  []string{"itag", "url", "mimeType", "bitrate"},
			forbidden: []string{"signatureCipher"},
		},
		{
			kind:      domain.FormatCipheredMuxed,
			required:  []string{"itag", "signatureCipher", "mimeType", "bitrate"},
			forbidden: []string{"url"},
		},
	}
)

func NewYoutube(videoURL string, opts Options) domain.Extractor {
	return &youtube{
		VideoURL: videoURL,
		Fetcher:  newFetcher(opts),
		log:      opts.Log.With().Str("site", youtubeSite).Logger(),
	}
}

func (y *youtube) String() string {
	return "YouTube"
}

func (y *youtube) Site() string {
	return youtubeSite
}

func (y *youtube) ValidateInput() error {
	_, err := videoID(y.VideoURL)
	return err
}

// videoID accepts watch?v=<id>, youtu.be/<id> and /shorts/<id> urls.
func videoID(videoURL string) (string, error) {
	mismatch := func(err error) error {
		return domain.NewParseError(youtubeSite, "video url", domain.ErrURLPatternMismatch, err)
	}

	u, err := url.Parse(videoURL)
	if err != nil {
		return "", mismatch(err)
	}

	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case strings.HasSuffix(u.Hostname(), "youtu.be") && len(segments) == 1 && segments[0] != "":
		return segments[0], nil
	case len(segments) == 2 && segments[0] == "shorts" && segments[1] != "":
		return segments[1], nil
	}

	return "", mismatch(fmt.Errorf("no video id in %q", videoURL))
}

func (y *youtube) Extract(ctx context.Context) (domain.Record, error) {
	id, err := videoID(y.VideoURL)
	if err != nil {
		return nil, err
	}

	page, err := y.Fetcher.GetText(ctx, y.VideoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get watch page: %w", err)
	}

	video, err := parseYoutubePlayerResponse(page)
	if err != nil {
		return nil, err
	}

	if video.VideoID == "" {
		video.VideoID = id
	}

	y.log.Trace().
		Str("video", video.VideoID).
		Int("formats", len(video.formats)).
		Int("adaptiveFormats", len(video.adaptiveFormats)).
		Msg("decoded player response")

	return video, nil
}

func parseYoutubePlayerResponse(page string) (*youtubeVideo, error) {
	match := youtubePlayerResponsePattern.FindStringSubmatch(page)
	if len(match) < 2 {
		return nil, domain.NewParseError(youtubeSite, "ytInitialPlayerResponse", domain.ErrMissingFragment, nil)
	}

	var resp youtubePlayerResponse
	if err := json.Unmarshal([]byte(match[1]), &resp); err != nil {
		return nil, domain.NewParseError(youtubeSite, "ytInitialPlayerResponse", domain.ErrDecodeFailure, err)
	}

	if resp.StreamingData == nil {
		var reason error
		if resp.PlayabilityStatus.Reason != "" {
			reason = fmt.Errorf("%s: %s", resp.PlayabilityStatus.Status, resp.PlayabilityStatus.Reason)
		}
		return nil, domain.NewParseError(youtubeSite, "streamingData", domain.ErrMissingFragment, reason)
	}

	formats, err := decodeFormats(resp.StreamingData.Formats, progressiveFormatShapes, "streamingData.formats")
	if err != nil {
		return nil, err
	}

	adaptiveFormats, err := decodeFormats(resp.StreamingData.AdaptiveFormats, adaptiveFormatShapes, "streamingData.adaptiveFormats")
	if err != nil {
		return nil, err
	}

	return &youtubeVideo{
		VideoID:          resp.VideoDetails.VideoID,
		Title:            resp.VideoDetails.Title,
		ExpiresInSeconds: resp.StreamingData.ExpiresInSeconds,
		formats:          formats,
		adaptiveFormats:  adaptiveFormats,
	}, nil
}

// decodeFormats decodes every descriptor with the first shape it matches.
// A descriptor matching no shape fails the whole list.
func decodeFormats(raws []json.RawMessage, shapes []formatShape, fragment string) ([]domain.Format, error) {
	formats := make([]domain.Format, 0, len(raws))

	for i, raw := range raws {
		format, err := decodeFormat(raw, shapes)
		if err != nil {
			return nil, domain.NewParseError(youtubeSite, fmt.Sprintf("%s[%d]", fragment, i), domain.ErrDecodeFailure, err)
		}

		formats = append(formats, format)
	}

	return formats, nil
}

func decodeFormat(raw json.RawMessage, shapes []formatShape) (domain.Format, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Format{}, err
	}

	for _, shape := range shapes {
		if !shape.matches(fields) {
			continue
		}

		var format domain.Format
		if err := json.Unmarshal(raw, &format); err != nil {
			return domain.Format{}, fmt.Errorf("%s format: %w", shape.kind, err)
		}
		format.Kind = shape.kind

		return format, nil
	}

	return domain.Format{}, fmt.Errorf("descriptor matches no known format shape")
}

func (v *youtubeVideo) Site() string {
	return youtubeSite
}

func (v *youtubeVideo) Formats() []domain.Format {
	return v.formats
}

func (v *youtubeVideo) AdaptiveFormats() []domain.Format {
	return v.adaptiveFormats
}
