// Package imaging implements the panel's server-side image compression: decode,
// cap the longest side, re-encode as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
)

// ErrNotAnImage is returned when the payload is not a decodable image.
var ErrNotAnImage = errors.New("payload is not a supported image")

// Options controls compression.
type Options struct {
	// MaxDimension caps the longest side of the output in pixels. Zero or
	// negative keeps original dimensions.
	MaxDimension int
	// Quality is the JPEG quality, 1-100. Zero means jpeg.DefaultQuality.
	Quality int
}

// Result describes a finished compression.
type Result struct {
	Data           []byte `json:"-"`
	ContentType    string `json:"contentType"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OriginalWidth  int    `json:"originalWidth"`
	OriginalHeight int    `json:"originalHeight"`
	OriginalSize   int64  `json:"originalSize"`
	Size           int64  `json:"size"`
}

// Compress decodes the image, rescales it so its longest side does not exceed
// opts.MaxDimension and re-encodes it as JPEG. Aspect ratio is preserved.
// Animated GIFs are flattened to their first frame.
func Compress(input []byte, opts Options) (*Result, error) {
	mtype := mimetype.Detect(input)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotAnImage, mtype.String())
	}

	src, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	bounds := src.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()

	w, h := fitDimensions(origW, origH, opts.MaxDimension)
	out := src
	if w != origW || h != origH {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	return &Result{
		Data:           buf.Bytes(),
		ContentType:    "image/jpeg",
		Width:          w,
		Height:         h,
		OriginalWidth:  origW,
		OriginalHeight: origH,
		OriginalSize:   int64(len(input)),
		Size:           int64(buf.Len()),
	}, nil
}

// fitDimensions scales (w, h) down so the longest side is at most max,
// preserving aspect ratio. Images already within the cap keep their size.
func fitDimensions(w, h, max int) (int, int) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h
	}

	if w >= h {
		scaled := h * max / w
		if scaled < 1 {
			scaled = 1
		}
		return max, scaled
	}
	scaled := w * max / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, max
}

// JPEGName rewrites a file name for the compressed output.
func JPEGName(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name + "_compressed.jpg"
}
