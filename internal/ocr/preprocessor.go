package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"

	tutorerr "github.com/canvastutor/tutor-service/internal/errors"
)

const (
	// Canvas images are bounded to this box before OCR
	MaxWidth  = 800
	MaxHeight = 600

	// Binary threshold midpoint on the 0-255 scale
	ThresholdLevel = 128

	// Largest decoded canvas accepted, in pixels
	MaxPixels = 40_000_000

	defaultSharpenSigma = 1.0
)

// PreprocessedImage is a single-channel, thresholded PNG ready for OCR
type PreprocessedImage struct {
	Data   []byte
	Width  int
	Height int
}

// Preprocessor turns freehand canvas strokes into print-like black on white
type Preprocessor struct {
	sharpenSigma float64
}

// NewPreprocessor creates a new image preprocessor
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		sharpenSigma: defaultSharpenSigma,
	}
}

// Preprocess applies, in order: fit within 800x600 (never upscaling),
// flatten onto white, greyscale, histogram normalization, threshold at 128,
// sharpen, and lossless PNG encoding. Undecodable input yields a
// PREPROCESSING_FAILED error, and so does a canvas above MaxPixels, before
// any full decode.
func (p *Preprocessor) Preprocess(raw []byte) (*PreprocessedImage, error) {
	if len(raw) == 0 {
		return nil, tutorerr.NewPreprocessingError(errors.New("empty image"))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, tutorerr.NewPreprocessingError(fmt.Errorf("read image header: %w", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, tutorerr.NewPreprocessingError(fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height))
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, tutorerr.NewPreprocessingError(fmt.Errorf("image is %dx%d, exceeds %d pixels", cfg.Width, cfg.Height, MaxPixels))
	}

	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, tutorerr.NewPreprocessingError(fmt.Errorf("decode image: %w", err))
	}

	resized := imaging.Fit(src, MaxWidth, MaxHeight, imaging.Lanczos)
	// Transparent canvas exports would otherwise turn black
	flat := flattenOnWhite(resized)
	grey := imaging.Grayscale(flat)
	normalized := normalizeHistogram(grey)
	binary := threshold(normalized, ThresholdLevel)
	sharpened := imaging.Sharpen(binary, p.sharpenSigma)

	out := toGray(sharpened)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, tutorerr.NewPreprocessingError(fmt.Errorf("encode image: %w", err))
	}

	bounds := out.Bounds()
	log.Debug().
		Str("component", "preprocessor").
		Int("in_bytes", len(raw)).
		Int("out_bytes", buf.Len()).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Msg("image preprocessed")

	return &PreprocessedImage{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

func flattenOnWhite(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// normalizeHistogram stretches grey levels so the darkest pixel maps to 0
// and the brightest to 255
func normalizeHistogram(img *image.NRGBA) *image.NRGBA {
	lo, hi := uint8(255), uint8(0)
	for i := 0; i < len(img.Pix); i += 4 {
		v := img.Pix[i]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return img
	}

	span := float64(hi - lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := uint8(float64(c.R-lo)*255/span + 0.5)
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

func threshold(img *image.NRGBA, level uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R >= level {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
}

func toGray(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = img.Pix[y*img.Stride+x*4]
		}
	}
	return out
}
