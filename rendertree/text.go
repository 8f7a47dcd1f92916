package rendertree

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/renderpipe/geom"
)

// TextMetrics describes the extent of a shaped line of text.
type TextMetrics struct {
	// Advance is the horizontal pen advance of the whole line.
	Advance float32

	// Ascent is the distance from the baseline to the top of the line.
	Ascent float32

	// Descent is the distance from the baseline to the bottom of the line,
	// as a positive value.
	Descent float32

	// RightToLeft reports whether the paragraph's base direction is RTL.
	RightToLeft bool
}

// Bounds returns the line box relative to a baseline origin.
func (m TextMetrics) Bounds() geom.Rect {
	return geom.Rect{MinX: 0, MinY: -m.Ascent, MaxX: m.Advance, MaxY: m.Descent}
}

var (
	defaultFontOnce sync.Once
	defaultFont     *font.Font
	defaultFontErr  error

	shaperPool = sync.Pool{New: func() any { return &shaping.HarfbuzzShaper{} }}
)

func loadDefaultFont() (*font.Font, error) {
	defaultFontOnce.Do(func() {
		face, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
		if err != nil {
			defaultFontErr = err
			return
		}
		defaultFont = face.Font
	})
	return defaultFont, defaultFontErr
}

// MeasureText shapes text in the Go Regular font at size pixels and
// returns its metrics.
func MeasureText(text string, size float32) (TextMetrics, error) {
	f, err := loadDefaultFont()
	if err != nil {
		return TextMetrics{}, err
	}
	runes := []rune(text)
	rtl := baseDirectionRTL(text)
	dir := di.DirectionLTR
	if rtl {
		dir = di.DirectionRTL
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      font.NewFace(f),
		Size:      fixed.Int26_6(size * 64),
		Script:    scriptOf(runes),
		Language:  language.NewLanguage("en"),
	}
	shaper := shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := shaper.Shape(input)
	shaperPool.Put(shaper)

	advance := out.Advance
	if advance < 0 {
		advance = -advance
	}
	descent := out.LineBounds.Descent
	if descent < 0 {
		descent = -descent
	}
	return TextMetrics{
		Advance:     fromFixed(advance),
		Ascent:      fromFixed(out.LineBounds.Ascent),
		Descent:     fromFixed(descent),
		RightToLeft: rtl,
	}, nil
}

func fromFixed(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func scriptOf(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// baseDirectionRTL reports whether the first directional run is RTL.
func baseDirectionRTL(text string) bool {
	if text == "" {
		return false
	}
	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(bidi.LeftToRight)); err != nil {
		return false
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return false
	}
	return ordering.Run(0).Direction() == bidi.RightToLeft
}

// TextNode draws one line of text with its baseline origin at Offset.
type TextNode struct {
	offset  geom.Point
	text    string
	size    float32
	color   ColorRGBA
	metrics TextMetrics
	bounds  geom.Rect
}

// NewTextNode shapes text and creates a node for it. It fails only if the
// built-in font cannot be loaded.
func NewTextNode(offset geom.Point, text string, size float32, c ColorRGBA) (*TextNode, error) {
	m, err := MeasureText(text, size)
	if err != nil {
		return nil, err
	}
	return &TextNode{
		offset:  offset,
		text:    text,
		size:    size,
		color:   c,
		metrics: m,
		bounds:  m.Bounds().Offset(offset.X, offset.Y),
	}, nil
}

// Offset returns the baseline origin.
func (n *TextNode) Offset() geom.Point { return n.offset }

// Text returns the string drawn.
func (n *TextNode) Text() string { return n.text }

// FontSize returns the font size in pixels.
func (n *TextNode) FontSize() float32 { return n.size }

// Color returns the text color.
func (n *TextNode) Color() ColorRGBA { return n.color }

// Metrics returns the shaped metrics.
func (n *TextNode) Metrics() TextMetrics { return n.metrics }

// Kind implements Node.
func (n *TextNode) Kind() NodeKind { return KindText }

// Bounds implements Node.
func (n *TextNode) Bounds() geom.Rect { return n.bounds }

func (*TextNode) sealed() {}

// WithColor returns a copy of n drawn in a different color.
func (n *TextNode) WithColor(c ColorRGBA) *TextNode {
	cp := *n
	cp.color = c
	return &cp
}
