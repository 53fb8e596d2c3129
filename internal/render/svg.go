package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Color is an SVG paint value, stored in its rendered form. The zero value
// renders as "none".
type Color string

// NoneColor disables fill or stroke.
const NoneColor Color = "none"

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color(fmt.Sprintf("rgb(%d,%d,%d)", r, g, b))
}

// RGBA returns a color with opacity in [0, 1].
func RGBA(r, g, b uint8, opacity float64) Color {
	return Color(fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, formatNumber(opacity)))
}

func (c Color) String() string {
	if c == "" {
		return string(NoneColor)
	}
	return string(c)
}

// UnmarshalJSON accepts a color name, [r, g, b] or [r, g, b, opacity].
func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Color(name)
		return nil
	}

	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("color must be a string or an array: %w", err)
	}
	switch len(parts) {
	case 3:
		*c = RGB(channel(parts[0]), channel(parts[1]), channel(parts[2]))
	case 4:
		*c = RGBA(channel(parts[0]), channel(parts[1]), channel(parts[2]), parts[3])
	default:
		return fmt.Errorf("color array must have 3 or 4 elements, got %d", len(parts))
	}
	return nil
}

func channel(v float64) uint8 {
	return uint8(int(v))
}

// Point is a position on the canvas.
type Point struct {
	X, Y float64
}

type lineCap string
type lineJoin string

const (
	lineCapRound  lineCap  = "round"
	lineJoinRound lineJoin = "round"
)

// pathProps are the presentation attributes shared by every shape. Unset
// attributes are omitted from the output.
type pathProps struct {
	fill        Color
	stroke      Color
	strokeWidth *float64
	lineCap     lineCap
	lineJoin    lineJoin
}

func (p pathProps) writeTo(b *strings.Builder) {
	if p.fill != "" {
		fmt.Fprintf(b, `fill="%s" `, p.fill)
	}
	if p.stroke != "" {
		fmt.Fprintf(b, `stroke="%s" `, p.stroke)
	}
	if p.strokeWidth != nil {
		fmt.Fprintf(b, `stroke-width="%s" `, formatNumber(*p.strokeWidth))
	}
	if p.lineCap != "" {
		fmt.Fprintf(b, `stroke-linecap="%s" `, p.lineCap)
	}
	if p.lineJoin != "" {
		fmt.Fprintf(b, `stroke-linejoin="%s" `, p.lineJoin)
	}
}

// object is one SVG element.
type object interface {
	render(b *strings.Builder)
}

type circle struct {
	pathProps
	center Point
	radius float64
}

func (c circle) render(b *strings.Builder) {
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" `,
		formatNumber(c.center.X), formatNumber(c.center.Y), formatNumber(c.radius))
	c.pathProps.writeTo(b)
	b.WriteString("/>")
}

type polyline struct {
	pathProps
	points []Point
}

func (p polyline) render(b *strings.Builder) {
	b.WriteString(`<polyline points="`)
	for i, pt := range p.points {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatNumber(pt.X))
		b.WriteByte(',')
		b.WriteString(formatNumber(pt.Y))
	}
	b.WriteString(`" `)
	p.pathProps.writeTo(b)
	b.WriteString("/>")
}

type text struct {
	pathProps
	position   Point
	offset     Point
	fontSize   int
	fontFamily string
	fontWeight string
	data       string
}

var textEscaper = strings.NewReplacer(
	`"`, "&quot;",
	"'", "&apos;",
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
)

func (t text) render(b *strings.Builder) {
	b.WriteString("<text ")
	t.pathProps.writeTo(b)
	fmt.Fprintf(b, ` x="%s" y="%s" dx="%s" dy="%s" font-size="%d"`,
		formatNumber(t.position.X), formatNumber(t.position.Y),
		formatNumber(t.offset.X), formatNumber(t.offset.Y), t.fontSize)
	if t.fontFamily != "" {
		fmt.Fprintf(b, ` font-family="%s"`, t.fontFamily)
	}
	if t.fontWeight != "" {
		fmt.Fprintf(b, ` font-weight="%s"`, t.fontWeight)
	}
	b.WriteByte('>')
	b.WriteString(textEscaper.Replace(t.data))
	b.WriteString("</text>")
}

// document is an ordered list of SVG elements.
type document struct {
	objects []object
}

func (d *document) add(o object) {
	d.objects = append(d.objects, o)
}

func (d *document) writeTo(w io.Writer) error {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n")
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1">` + "\n")
	for _, o := range d.objects {
		b.WriteString("  ")
		o.render(&b)
		b.WriteByte('\n')
	}
	b.WriteString("</svg>")

	_, err := io.WriteString(w, b.String())
	return err
}

// formatNumber prints v with six significant digits, dropping trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func ptr[T any](v T) *T {
	return &v
}
