package domain

type FormatKind int

const (
	FormatVideo FormatKind = iota
	FormatCipheredVideo
	FormatAudio
	FormatCipheredAudio
	// FormatMuxed and FormatCipheredMuxed are progressive formats carrying
	// both audio and video.
	FormatMuxed
	FormatCipheredMuxed
)

func (k FormatKind) String() string {
	switch k {
	case FormatVideo:
		return "video"
	case FormatCipheredVideo:
		return "ciphered video"
	case FormatAudio:
		return "audio"
	case FormatCipheredAudio:
		return "ciphered audio"
	case FormatMuxed:
		return "muxed"
	case FormatCipheredMuxed:
		return "ciphered muxed"
	default:
		return "unknown"
	}
}

// Format is one stream descriptor from a video player response. Exactly one
// of URL and SignatureCipher is set.
type Format struct {
	Kind             FormatKind `json:"kind"`
	Itag             int        `json:"itag"`
	URL              string     `json:"url,omitempty"`
	SignatureCipher  string     `json:"signatureCipher,omitempty"`
	MimeType         string     `json:"mimeType"`
	Bitrate          int        `json:"bitrate"`
	AverageBitrate   int        `json:"averageBitrate,omitempty"`
	Width            int        `json:"width,omitempty"`
	Height           int        `json:"height,omitempty"`
	FPS              int        `json:"fps,omitempty"`
	InitRange        *Range     `json:"initRange,omitempty"`
	IndexRange       *Range     `json:"indexRange,omitempty"`
	ContentLength    string     `json:"contentLength,omitempty"`
	LastModified     string     `json:"lastModified,omitempty"`
	Quality          string     `json:"quality,omitempty"`
	QualityLabel     string     `json:"qualityLabel,omitempty"`
	ProjectionType   string     `json:"projectionType,omitempty"`
	AudioQuality     string     `json:"audioQuality,omitempty"`
	AudioSampleRate  string     `json:"audioSampleRate,omitempty"`
	AudioChannels    int        `json:"audioChannels,omitempty"`
	LoudnessDB       float64    `json:"loudnessDb,omitempty"`
	HighReplication  bool       `json:"highReplication,omitempty"`
	ApproxDurationMs string     `json:"approxDurationMs,omitempty"`
	ColorInfo        *ColorInfo `json:"colorInfo,omitempty"`
}

type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ColorInfo struct {
	Primaries               string `json:"primaries,omitempty"`
	TransferCharacteristics string `json:"transferCharacteristics,omitempty"`
	MatrixCoefficients      string `json:"matrixCoefficients,omitempty"`
}

func (f Format) Ciphered() bool {
	switch f.Kind {
	case FormatCipheredVideo, FormatCipheredAudio, FormatCipheredMuxed:
		return true
	}

	return false
}

func (f Format) IsAudio() bool {
	return f.Kind == FormatAudio || f.Kind == FormatCipheredAudio
}

func (f Format) IsVideo() bool {
	return !f.IsAudio()
}

func (k FormatKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
