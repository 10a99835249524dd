package ndarray

import (
	"image"
	"image/color"
)

// FromRGBA converts an image into a (height, width, 4) Uint8 array in BGRA
// channel order, the layout device image objects interchange with the host.
func FromRGBA(img image.Image) *Array {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	a := New(Uint8, h, w, 4)
	pix := a.data
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			pix[i+0] = c.B
			pix[i+1] = c.G
			pix[i+2] = c.R
			pix[i+3] = c.A
			i += 4
		}
	}
	return a
}

// RGBA converts a (height, width, 4) Uint8 BGRA array back into an image.
// Panics if the array is not a 4-channel uint8 array.
func (a *Array) RGBA() *image.RGBA {
	if a.dtype != Uint8 || a.Rank() != 3 || a.shape[2] != 4 {
		panic("ndarray: RGBA requires a (h, w, 4) uint8 array")
	}
	h, w := a.shape[0], a.shape[1]
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	src := a.data
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			s := (y*w + x) * 4
			row[x*4+0] = src[s+2]
			row[x*4+1] = src[s+1]
			row[x*4+2] = src[s+0]
			row[x*4+3] = src[s+3]
		}
	}
	return img
}

// Gray converts a (height, width) Uint8 array into a grayscale image.
func (a *Array) Gray() *image.Gray {
	if a.dtype != Uint8 || a.Rank() != 2 {
		panic("ndarray: Gray requires a (h, w) uint8 array")
	}
	h, w := a.shape[0], a.shape[1]
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w], a.data[y*w:(y+1)*w])
	}
	return img
}

// FromGray converts a grayscale image into a (height, width) Uint8 array.
func FromGray(img *image.Gray) *Array {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	a := New(Uint8, h, w)
	for y := 0; y < h; y++ {
		copy(a.data[y*w:(y+1)*w], img.Pix[y*img.Stride:y*img.Stride+w])
	}
	return a
}
