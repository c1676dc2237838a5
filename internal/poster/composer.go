// Package poster composes the 1000x1500 Pinterest poster: two cover-cropped
// images stacked vertically with a white title banner across the middle.
package poster

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

const (
	canvasWidth  = 1000
	canvasHeight = 1500
	bannerHeight = 330

	// Greedy wrap flushes a line once appending the next word would push it
	// past this many characters.
	maxLineChars = 25

	// Discrete font tiers keyed on the longest wrapped line. The 20/25
	// thresholds are tuning constants carried over from the template.
	fontSizeBase   = 66
	fontSizeMedium = 56
	fontSizeSmall  = 46

	lineHeightFactor = 1.3
	captionFontSize  = 26
	jpegQuality      = 90
)

var titleColor = color.RGBA{R: 0x4B, G: 0x6F, B: 0x44, A: 0xFF} // dark olive green

// Request describes one poster composition. Consumed once, no retained state.
type Request struct {
	Title   string
	Image1  []byte
	Image2  []byte
	Caption string
}

// ImageError reports a failed decode, layout, or encode step.
type ImageError struct {
	Stage string
	Err   error
}

func (e ImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("poster %s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("poster %s failed", e.Stage)
}

func (e ImageError) Unwrap() error { return e.Err }

var (
	fontOnce    sync.Once
	titleFont   *opentype.Font
	fontLoadErr error
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		titleFont, fontLoadErr = opentype.Parse(gobold.TTF)
	})
	return titleFont, fontLoadErr
}

// Compose renders the poster and returns it as JPEG bytes. Either source
// image failing to decode is fatal; there is no partial output.
func Compose(req Request) ([]byte, error) {
	img1, err := imaging.Decode(bytes.NewReader(req.Image1))
	if err != nil {
		return nil, ImageError{Stage: "decode of image 1", Err: err}
	}
	img2, err := imaging.Decode(bytes.NewReader(req.Image2))
	if err != nil {
		return nil, ImageError{Stage: "decode of image 2", Err: err}
	}

	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetColor(color.White)
	dc.Clear()

	// Each source fills exactly half the canvas with a centered cover crop.
	halfHeight := canvasHeight / 2
	top := imaging.Fill(img1, canvasWidth, halfHeight, imaging.Center, imaging.Lanczos)
	bottom := imaging.Fill(img2, canvasWidth, halfHeight, imaging.Center, imaging.Lanczos)
	dc.DrawImage(top, 0, 0)
	dc.DrawImage(bottom, 0, halfHeight)

	// Full-width white band centered on the vertical midpoint.
	bannerY := float64(canvasHeight-bannerHeight) / 2
	dc.SetColor(color.White)
	dc.DrawRectangle(0, bannerY, canvasWidth, bannerHeight)
	dc.Fill()

	if err := drawTitle(dc, req.Title, bannerY); err != nil {
		return nil, err
	}
	if req.Caption != "" {
		if err := drawCaption(dc, req.Caption); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dc.Image(), imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, ImageError{Stage: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

func drawTitle(dc *gg.Context, title string, bannerY float64) error {
	lines := WrapTitle(title)
	size := FontSizeFor(lines)

	face, err := newFace(float64(size))
	if err != nil {
		return ImageError{Stage: "font load", Err: err}
	}
	dc.SetFontFace(face)
	dc.SetColor(titleColor)

	lineHeight := float64(size) * lineHeightFactor
	blockHeight := float64(len(lines)) * lineHeight
	y := bannerY + (bannerHeight-blockHeight)/2 + lineHeight/2
	for _, line := range lines {
		dc.DrawStringAnchored(line, canvasWidth/2, y, 0.5, 0.5)
		y += lineHeight
	}
	return nil
}

func drawCaption(dc *gg.Context, caption string) error {
	face, err := newFace(captionFontSize)
	if err != nil {
		return ImageError{Stage: "font load", Err: err}
	}
	dc.SetFontFace(face)
	dc.SetColor(titleColor)
	dc.DrawStringAnchored(caption, canvasWidth/2, canvasHeight-60, 0.5, 0.5)
	return nil
}

func newFace(size float64) (font.Face, error) {
	f, err := loadFont()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// WrapTitle upper-cases the title and greedily wraps it into lines of at most
// maxLineChars characters, never splitting a word. A short title stays on one
// line; a single word longer than the limit overflows on its own line.
func WrapTitle(title string) []string {
	title = strings.ToUpper(strings.Join(strings.Fields(title), " "))
	if utf8.RuneCountInString(title) <= maxLineChars {
		return []string{title}
	}

	var lines []string
	var line string
	for _, word := range strings.Fields(title) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if utf8.RuneCountInString(candidate) <= maxLineChars {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// FontSizeFor picks the tier for a wrapped line set: base up to 20 chars,
// medium up to 25, small beyond that.
func FontSizeFor(lines []string) int {
	longest := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > longest {
			longest = n
		}
	}
	switch {
	case longest <= 20:
		return fontSizeBase
	case longest <= maxLineChars:
		return fontSizeMedium
	default:
		return fontSizeSmall
	}
}
