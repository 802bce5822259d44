package notify

import (
	"image"
	"image/draw"
)

// ImageData is the raw image layout of the freedesktop "image-data" hint,
// marshalled by D-Bus as (iiibiiay).
type ImageData struct {
	Width         int32
	Height        int32
	RowStride     int32
	HasAlpha      bool
	BitsPerSample int32
	Channels      int32
	Data          []byte
}

// NewImageData converts img to straight-alpha RGBA rows.
func NewImageData(img image.Image) ImageData {
	b := img.Bounds()
	var dst *image.NRGBA
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		dst = n
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	}

	//nolint:gosec // thumbnail dimensions are small, no overflow risk
	return ImageData{
		Width:         int32(b.Dx()),
		Height:        int32(b.Dy()),
		RowStride:     int32(dst.Stride),
		HasAlpha:      true,
		BitsPerSample: 8,
		Channels:      4,
		Data:          dst.Pix[:dst.Stride*b.Dy()],
	}
}
