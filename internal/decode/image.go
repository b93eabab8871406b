package decode

import (
	"image"
	"image/color"
)

// halfScale returns a copy of img at half the resolution using nearest
// neighbor sampling. Symbol readers only need the module grid to stay
// distinguishable, so quality of the scaler does not matter.
func halfScale(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx() / 2
	height := bounds.Dy() / 2
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.Set(x, y, img.At(bounds.Min.X+x*2, bounds.Min.Y+y*2))
		}
	}
	return out
}

// invert flips every pixel photometrically. Labels printed light on dark
// read as the inverse of what the decoder expects.
func invert(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA64{
				R: uint16(0xffff - r),
				G: uint16(0xffff - g),
				B: uint16(0xffff - b),
				A: uint16(a),
			})
		}
	}
	return out
}
