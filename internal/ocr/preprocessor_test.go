package ocr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	tutorerr "github.com/canvastutor/tutor-service/internal/errors"
)

// canvasPNG draws a dark diagonal stroke on a light grey background
func canvasPNG(t *testing.T, w, h int, transparent bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bg := color.NRGBA{R: 230, G: 230, B: 230, A: 255}
	if transparent {
		bg = color.NRGBA{}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, bg)
		}
	}
	for i := 0; i < w && i < h; i++ {
		for d := 0; d < 6 && i+d < w; d++ {
			img.Set(i+d, i, color.NRGBA{R: 20, G: 40, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func decodeGray(t *testing.T, data []byte) *image.Gray {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("output is %T, want *image.Gray", img)
	}
	return g
}

func TestPreprocessNeverUpscales(t *testing.T) {
	p := NewPreprocessor()

	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"small stays small", 320, 200, 320, 200},
		{"exact bound", 800, 600, 800, 600},
		{"wide is fit to width", 1600, 600, 800, 300},
		{"tall is fit to height", 600, 1200, 300, 600},
		{"large keeps aspect", 1600, 1200, 800, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Preprocess(canvasPNG(t, tt.w, tt.h, false))
			if err != nil {
				t.Fatalf("Preprocess() error = %v", err)
			}
			if out.Width != tt.wantW || out.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", out.Width, out.Height, tt.wantW, tt.wantH)
			}
			if out.Width > tt.w || out.Height > tt.h {
				t.Errorf("output %dx%d larger than input %dx%d", out.Width, out.Height, tt.w, tt.h)
			}
		})
	}
}

func TestPreprocessProducesBinaryImage(t *testing.T) {
	p := NewPreprocessor()

	out, err := p.Preprocess(canvasPNG(t, 200, 150, false))
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	g := decodeGray(t, out.Data)
	var black, white int
	for _, v := range g.Pix {
		switch v {
		case 0:
			black++
		case 255:
			white++
		default:
			t.Fatalf("found grey level %d, want only 0 or 255", v)
		}
	}
	if black == 0 || white == 0 {
		t.Errorf("black=%d white=%d, want both present", black, white)
	}
	if white < black {
		t.Errorf("background should be white: black=%d white=%d", black, white)
	}
}

func TestPreprocessFlattensTransparentCanvas(t *testing.T) {
	p := NewPreprocessor()

	out, err := p.Preprocess(canvasPNG(t, 100, 100, true))
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	g := decodeGray(t, out.Data)
	if corner := g.GrayAt(99, 0).Y; corner != 255 {
		t.Errorf("transparent background became %d, want 255", corner)
	}
}

func TestPreprocessRejectsMalformedInput(t *testing.T) {
	p := NewPreprocessor()

	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not an image"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.Preprocess(data)
			if err == nil {
				t.Fatal("Preprocess() error = nil, want error")
			}
			var te *tutorerr.TutorError
			if !errors.As(err, &te) || te.Code != tutorerr.ErrorPreprocessing {
				t.Errorf("error = %v, want TutorError with code %s", err, tutorerr.ErrorPreprocessing)
			}
		})
	}
}

// pngWithDimensions returns a 1x1 PNG whose header claims w x h pixels
func pngWithDimensions(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	data := buf.Bytes()

	// 8-byte signature, then IHDR: length(4) type(4) width(4) height(4) ... crc(4)
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestPreprocessRejectsOversizedDimensions(t *testing.T) {
	p := NewPreprocessor()

	tests := []struct {
		name string
		w, h uint32
	}{
		{"12000 square", 12000, 12000},
		{"just over budget", 8000, 5001},
		{"very wide strip", 1 << 30, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Preprocess(pngWithDimensions(t, tt.w, tt.h))
			var te *tutorerr.TutorError
			if !errors.As(err, &te) || te.Code != tutorerr.ErrorPreprocessing {
				t.Fatalf("error = %v, want TutorError with code %s", err, tutorerr.ErrorPreprocessing)
			}
		})
	}
}

func TestPreprocessFitsLargeTransparentCanvas(t *testing.T) {
	out, err := NewPreprocessor().Preprocess(canvasPNG(t, 1600, 1200, true))
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if out.Width != MaxWidth || out.Height != MaxHeight {
		t.Errorf("size = %dx%d, want %dx%d", out.Width, out.Height, MaxWidth, MaxHeight)
	}
	g := decodeGray(t, out.Data)
	if corner := g.GrayAt(MaxWidth-1, 0).Y; corner != 255 {
		t.Errorf("transparent background became %d, want 255", corner)
	}
}
