// Package stream sorts decoded video stream formats into direct and
// ciphered variants.
package stream

import (
	"comicarr/internal/domain"

	"github.com/rs/zerolog"
)

// Handler receives each format according to its variant. Muxed formats are
// reported as video.
type Handler interface {
	Video(domain.Format)
	CipheredVideo(domain.Format)
	Audio(domain.Format)
	CipheredAudio(domain.Format)
}

// Dispatch routes every format to the matching handler method in order.
func Dispatch(formats []domain.Format, h Handler) {
	for _, f := range formats {
		switch f.Kind {
		case domain.FormatVideo, domain.FormatMuxed:
			h.Video(f)
		case domain.FormatCipheredVideo, domain.FormatCipheredMuxed:
			h.CipheredVideo(f)
		case domain.FormatAudio:
			h.Audio(f)
		case domain.FormatCipheredAudio:
			h.CipheredAudio(f)
		}
	}
}

// Partitioned holds formats grouped by variant, each group in input order.
type Partitioned struct {
	Videos         []domain.Format `json:"videos"`
	CipheredVideos []domain.Format `json:"cipheredVideos"`
	Audios         []domain.Format `json:"audios"`
	CipheredAudios []domain.Format `json:"cipheredAudios"`
}

// Partition groups formats by variant. Empty groups are empty, not nil.
func Partition(formats []domain.Format) Partitioned {
	p := &partitioner{
		out: Partitioned{
			Videos:         []domain.Format{},
			CipheredVideos: []domain.Format{},
			Audios:         []domain.Format{},
			CipheredAudios: []domain.Format{},
		},
	}
	Dispatch(formats, p)

	return p.out
}

// FromRecord partitions the progressive formats followed by the adaptive
// formats of rec.
func FromRecord(rec domain.StreamRecord) Partitioned {
	formats := make([]domain.Format, 0, len(rec.Formats())+len(rec.AdaptiveFormats()))
	formats = append(formats, rec.Formats()...)
	formats = append(formats, rec.AdaptiveFormats()...)

	return Partition(formats)
}

type partitioner struct {
	out Partitioned
}

func (p *partitioner) Video(f domain.Format) { p.out.Videos = append(p.out.Videos, f) }

func (p *partitioner) CipheredVideo(f domain.Format) {
	p.out.CipheredVideos = append(p.out.CipheredVideos, f)
}

func (p *partitioner) Audio(f domain.Format) { p.out.Audios = append(p.out.Audios, f) }

func (p *partitioner) CipheredAudio(f domain.Format) {
	p.out.CipheredAudios = append(p.out.CipheredAudios, f)
}

// LogHandler reports the url or cipher of every format. Ciphers are not
// resolved.
type LogHandler struct {
	Log zerolog.Logger
}

func (h LogHandler) Video(f domain.Format) {
	h.event(f).Str("url", f.URL).Msg("video url")
}

func (h LogHandler) CipheredVideo(f domain.Format) {
	h.event(f).Str("cipher", f.SignatureCipher).Msg("video cipher")
}

func (h LogHandler) Audio(f domain.Format) {
	h.event(f).Str("url", f.URL).Msg("audio url")
}

func (h LogHandler) CipheredAudio(f domain.Format) {
	h.event(f).Str("cipher", f.SignatureCipher).Msg("audio cipher")
}

func (h LogHandler) event(f domain.Format) *zerolog.Event {
	return h.Log.Info().
		Int("itag", f.Itag).
		Str("kind", f.Kind.String()).
		Str("mime", f.MimeType).
		Int("bitrate", f.Bitrate).
		Str("quality", f.QualityLabel)
}
