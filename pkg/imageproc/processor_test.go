package imageproc

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decoded(t *testing.T, res *Result) (image.Image, string) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	return img, format
}

func TestCompressFitsWithinThreshold(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 3000, 1500, 2000, 1000},
		{"portrait", 1200, 4000, 600, 2000},
		{"already small", 640, 480, 640, 480},
		{"exactly at limit", 2000, 2000, 2000, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compress(encodeJPEG(t, solid(tt.w, tt.h)), Options{})
			require.NoError(t, err)

			img, format := decoded(t, res)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, "jpeg", res.Format)
			assert.Equal(t, ".jpg", res.Ext())
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
			assert.Equal(t, tt.wantW, res.Width)
			assert.Equal(t, tt.wantH, res.Height)
		})
	}
}

func TestCompressCustomThreshold(t *testing.T) {
	res, err := Compress(encodeJPEG(t, solid(800, 200)), Options{MaxDimension: 400, Quality: 60})
	require.NoError(t, err)
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 100, res.Height)
}

func TestCompressKeepsTransparencyLossless(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2400, 1200))
	for y := 0; y < 1200; y++ {
		for x := 0; x < 2400; x++ {
			a := uint8(255)
			if x < 1200 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: a})
		}
	}

	res, err := Compress(encodePNG(t, img), Options{})
	require.NoError(t, err)

	out, format := decoded(t, res)
	assert.Equal(t, "png", format)
	assert.Equal(t, ".png", res.Ext())
	assert.Equal(t, 2000, out.Bounds().Dx())
	assert.Equal(t, 1000, out.Bounds().Dy())
	_, _, _, a := out.At(10, 10).RGBA()
	assert.Equal(t, uint32(0), a)
}

func TestCompressOpaquePNGBecomesJPEG(t *testing.T) {
	res, err := Compress(encodePNG(t, solid(300, 200)), Options{})
	require.NoError(t, err)
	_, format := decoded(t, res)
	assert.Equal(t, "jpeg", format)
}

func TestCompressPalettedWithTransparentIndex(t *testing.T) {
	palette := color.Palette{color.RGBA{0, 0, 0, 0}, color.RGBA{255, 0, 0, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 50, 50), palette)
	for x := 0; x < 50; x++ {
		img.SetColorIndex(x, x, 1)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))

	res, err := Compress(buf.Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "png", res.Format)
}

// withOrientation splices a minimal EXIF APP1 segment carrying the given
// orientation tag right after the JPEG SOI marker.
func withOrientation(t *testing.T, src []byte, orientation uint16) []byte {
	t.Helper()
	require.Equal(t, []byte{0xFF, 0xD8}, src[:2])

	var tiff bytes.Buffer
	tiff.WriteString("MM")
	binary.Write(&tiff, binary.BigEndian, uint16(0x002A))
	binary.Write(&tiff, binary.BigEndian, uint32(8))
	binary.Write(&tiff, binary.BigEndian, uint16(1))      // one IFD entry
	binary.Write(&tiff, binary.BigEndian, uint16(0x0112)) // Orientation
	binary.Write(&tiff, binary.BigEndian, uint16(3))      // SHORT
	binary.Write(&tiff, binary.BigEndian, uint32(1))
	binary.Write(&tiff, binary.BigEndian, orientation)
	binary.Write(&tiff, binary.BigEndian, uint16(0))
	binary.Write(&tiff, binary.BigEndian, uint32(0)) // no next IFD

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(src[:2])
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(src[2:])
	return out.Bytes()
}

func TestCompressAppliesOrientation(t *testing.T) {
	src := withOrientation(t, encodeJPEG(t, solid(40, 20)), 6)

	res, err := Compress(src, Options{})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Width)
	assert.Equal(t, 40, res.Height)
}

func TestCompressRejectsGarbage(t *testing.T) {
	_, err := Compress([]byte("definitely not an image"), Options{})
	assert.Error(t, err)

	_, err = CompressReader(bytes.NewReader(nil), Options{})
	assert.Error(t, err)
}

func TestHasTransparency(t *testing.T) {
	assert.False(t, HasTransparency(solid(4, 4)))

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.True(t, HasTransparency(img))
}
