// Package imageproc normalises uploaded photos: EXIF orientation is applied,
// oversized images are fitted inside a bounding square and the result is
// re-encoded as PNG (when it has transparent pixels) or JPEG.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Support GIF
	_ "image/jpeg" // Support JPEG
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Support WebP
)

const (
	DefaultMaxDimension = 2000
	DefaultJPEGQuality  = 85
)

type Options struct {
	MaxDimension int // Longest allowed side in pixels
	Quality      int // JPEG quality (1-100)
}

type Result struct {
	Data   []byte
	Format string // "jpeg" or "png"
	Width  int
	Height int
}

// Ext returns the file extension matching the encoded format.
func (r *Result) Ext() string {
	if r.Format == "png" {
		return ".png"
	}
	return ".jpg"
}

func (o Options) withDefaults() Options {
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultJPEGQuality
	}
	return o
}

// Compress decodes src, auto-orients it, downscales it to fit within
// MaxDimension x MaxDimension (aspect ratio kept) and re-encodes it.
func Compress(src []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	transparent := HasTransparency(img)

	b := img.Bounds()
	if b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}

	res := &Result{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}

	buf := new(bytes.Buffer)
	if transparent {
		res.Format = "png"
		err = imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	} else {
		res.Format = "jpeg"
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", res.Format, err)
	}

	res.Data = buf.Bytes()
	return res, nil
}

// CompressReader is Compress for streams.
func CompressReader(r io.Reader, opts Options) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return Compress(src, opts)
}

// HasTransparency reports whether any pixel of img is not fully opaque.
func HasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
