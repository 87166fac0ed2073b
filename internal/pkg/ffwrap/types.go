package ffwrap

import (
	"fmt"

	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
)

const (
	SideDataTypeMastering = "Mastering display metadata"
	hevcCodecName         = "hevc"
)

type FfprobeOutput struct {
	Streams []FfprobeStreams `json:"streams"`
	Frames  []FfprobeFrame   `json:"frames"`
}

type FfprobeStreams struct {
	Codec      string `json:"codec_name"`
	Codec_type string `json:"codec_type"`
}

type FfprobeFrame struct {
	Side_data_list []ColorSideInfo `json:"side_data_list"`
}

// ColorSideInfo is one side data entry of a decoded frame. Chromaticity and
// luminance values are rationals such as "35400/50000".
type ColorSideInfo struct {
	Side_data_type string `json:"side_data_type"`
	Red_x          string `json:"red_x"`
	Red_y          string `json:"red_y"`
	Green_x        string `json:"green_x"`
	Green_y        string `json:"green_y"`
	Blue_x         string `json:"blue_x"`
	Blue_y         string `json:"blue_y"`
	White_point_x  string `json:"white_point_x"`
	White_point_y  string `json:"white_point_y"`
	Min_luminance  string `json:"min_luminance"`
	Max_luminance  string `json:"max_luminance"`
}

// complete reports whether ffprobe printed both primaries and luminance.
func (c ColorSideInfo) complete() bool {
	for _, v := range []string{
		c.Red_x, c.Red_y, c.Green_x, c.Green_y, c.Blue_x, c.Blue_y,
		c.White_point_x, c.White_point_y, c.Min_luminance, c.Max_luminance,
	} {
		if v == "" {
			return false
		}
	}
	return true
}

// Reason tells why extraction failed.
type Reason int

const (
	FileOpen Reason = iota
	NoVideoStream
	UnsupportedCodec
	DecoderInit
	Decode
	NotFound
)

func (r Reason) String() string {
	switch r {
	case FileOpen:
		return "file open failed"
	case NoVideoStream:
		return "no video stream"
	case UnsupportedCodec:
		return "unsupported codec"
	case DecoderInit:
		return "decoder init failed"
	case Decode:
		return "decode error"
	case NotFound:
		return "metadata not found within frame limit"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// ExtractionError is the cause attached to every mderr.Extraction error
// returned by this package.
type ExtractionError struct {
	Reason Reason
	Path   string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func extractionError(r Reason, path string, err error, msg string) error {
	return &mderr.Error{
		Kind: mderr.Extraction,
		Msg:  msg,
		Err:  &ExtractionError{Reason: r, Path: path, Err: err},
	}
}
