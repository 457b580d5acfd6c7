// Package postprocess transcodes provider output into the compressed
// web-friendly form the dashboard serves: decode, cap the longest edge at
// 2048 px without ever upscaling, re-encode as JPEG at a fixed quality.
package postprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxEdge caps the longest output dimension.
	MaxEdge = 2048
	// JPEGQuality is the fixed lossy quality setting.
	JPEGQuality = 80
)

// Result is the processed asset plus its decoded metadata.
type Result struct {
	Data   []byte
	Width  int
	Height int
	MIME   string
}

// Process runs the deterministic pipeline on raw image bytes.
func Process(data []byte) (*Result, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("postprocess: decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if tw, th, ok := fitWithin(w, h, MaxEdge); ok {
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		src = dst
		w, h = tw, th
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("postprocess: encode jpeg: %w", err)
	}
	return &Result{Data: buf.Bytes(), Width: w, Height: h, MIME: "image/jpeg"}, nil
}

// fitWithin computes scaled dimensions so the longest edge equals maxEdge,
// preserving aspect ratio. Returns ok=false when the image already fits;
// small images are never upscaled.
func fitWithin(w, h, maxEdge int) (int, int, bool) {
	if w <= maxEdge && h <= maxEdge {
		return w, h, false
	}
	if w >= h {
		return maxEdge, scaleDim(h, w, maxEdge), true
	}
	return scaleDim(w, h, maxEdge), maxEdge, true
}

func scaleDim(dim, longest, maxEdge int) int {
	scaled := dim * maxEdge / longest
	if scaled < 1 {
		return 1
	}
	return scaled
}
