package resources

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

type transparency int

const (
	transparencyUnknown transparency = iota
	transparencyOpaque
	transparencyTransparent
)

/**
 * @brief Decoded pixels handed to textures and cubemaps. Either 8 bit RGBA
 * (non premultiplied) or HDR float RGBA. Decoding files is left to loaders.
 */
type Image struct {
	width, height int
	pixels        []uint8
	hdr           []float32
	transparent   *transparency
}

// NewImageRGBA wraps w*h*4 bytes of non premultiplied RGBA.
func NewImageRGBA(w, h int, pixels []uint8) Image {
	if len(pixels) < w*h*4 {
		return Image{}
	}
	return Image{width: w, height: h, pixels: pixels, transparent: new(transparency)}
}

// NewImageHDR wraps w*h pixels with the given component count (1 to 4),
// expanding them to RGBA floats.
func NewImageHDR(w, h, components int, data []float32) Image {
	if components < 1 || components > 4 || len(data) < w*h*components {
		return Image{}
	}
	out := make([]float32, w*h*4)
	for i := 0; i < w*h; i++ {
		px := data[i*components : i*components+components]
		r := px[0]
		g, b, a := r, r, float32(1)
		if components >= 3 {
			g, b = px[1], px[2]
		}
		if components == 4 {
			a = px[3]
		}
		out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = r, g, b, a
	}
	return Image{width: w, height: h, hdr: out, transparent: new(transparency)}
}

// ImageFrom converts any decoded image to 8 bit RGBA.
func ImageFrom(src image.Image) Image {
	if src == nil {
		return Image{}
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return NewImageRGBA(b.Dx(), b.Dy(), dst.Pix)
}

// Resized returns a copy scaled to w x h. HDR images are box filtered.
func (img Image) Resized(w, h int) Image {
	if img.IsNull() || w <= 0 || h <= 0 || (w == img.width && h == img.height) {
		return img
	}
	if img.IsHDR() {
		return img.resizedHDR(w, h)
	}
	src := &image.NRGBA{Pix: img.pixels, Stride: img.width * 4, Rect: image.Rect(0, 0, img.width, img.height)}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return NewImageRGBA(w, h, dst.Pix)
}

func (img Image) resizedHDR(w, h int) Image {
	out := make([]float32, w*h*4)
	for y := 0; y < h; y++ {
		y0, y1 := y*img.height/h, max((y+1)*img.height/h, y*img.height/h+1)
		for x := 0; x < w; x++ {
			x0, x1 := x*img.width/w, max((x+1)*img.width/w, x*img.width/w+1)
			var sum [4]float32
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					i := (sy*img.width + sx) * 4
					for c := 0; c < 4; c++ {
						sum[c] += img.hdr[i+c]
					}
				}
			}
			n := float32((y1 - y0) * (x1 - x0))
			o := (y*w + x) * 4
			for c := 0; c < 4; c++ {
				out[o+c] = sum[c] / n
			}
		}
	}
	return Image{width: w, height: h, hdr: out, transparent: new(transparency)}
}

func (img Image) IsNull() bool {
	return img.width == 0 || img.height == 0 || (img.pixels == nil && img.hdr == nil)
}

func (img Image) IsHDR() bool {
	return img.hdr != nil
}

func (img Image) Size() (int, int) {
	return img.width, img.height
}

func (img Image) Pixels() []uint8 { return img.pixels }

func (img Image) HDRPixels() []float32 { return img.hdr }

// HasAlphaChannel reports whether any pixel is not fully opaque. The scan runs once.
func (img Image) HasAlphaChannel() bool {
	if img.IsNull() {
		return false
	}
	if *img.transparent == transparencyUnknown {
		*img.transparent = transparencyOpaque
		if img.IsHDR() {
			for i := 3; i < len(img.hdr); i += 4 {
				if img.hdr[i] < 1 {
					*img.transparent = transparencyTransparent
					break
				}
			}
		} else {
			for i := 3; i < len(img.pixels); i += 4 {
				if img.pixels[i] != 0xff {
					*img.transparent = transparencyTransparent
					break
				}
			}
		}
	}
	return *img.transparent == transparencyTransparent
}

// At returns the 8 bit color of pixel (x, y). HDR values are clamped.
func (img Image) At(x, y int) color.NRGBA {
	if img.IsNull() || x < 0 || y < 0 || x >= img.width || y >= img.height {
		return color.NRGBA{}
	}
	i := (y*img.width + x) * 4
	if img.IsHDR() {
		c := func(f float32) uint8 {
			if f <= 0 {
				return 0
			}
			if f >= 1 {
				return 0xff
			}
			return uint8(f*255 + 0.5)
		}
		return color.NRGBA{R: c(img.hdr[i]), G: c(img.hdr[i+1]), B: c(img.hdr[i+2]), A: c(img.hdr[i+3])}
	}
	return color.NRGBA{R: img.pixels[i], G: img.pixels[i+1], B: img.pixels[i+2], A: img.pixels[i+3]}
}
