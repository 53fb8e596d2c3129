// Package render draws the bus network as an SVG map.
package render

import (
	"io"
	"strings"

	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/geo"
)

// Settings controls the map layout and palette.
type Settings struct {
	Width             float64    `json:"width" yaml:"width" validate:"gte=0,lte=100000"`
	Height            float64    `json:"height" yaml:"height" validate:"gte=0,lte=100000"`
	Padding           float64    `json:"padding" yaml:"padding" validate:"gte=0"`
	StopRadius        float64    `json:"stop_radius" yaml:"stop_radius" validate:"gte=0,lte=100000"`
	LineWidth         float64    `json:"line_width" yaml:"line_width" validate:"gte=0,lte=100000"`
	BusLabelFontSize  int        `json:"bus_label_font_size" yaml:"bus_label_font_size" validate:"gte=0,lte=100000"`
	BusLabelOffset    [2]float64 `json:"bus_label_offset" yaml:"bus_label_offset"`
	StopLabelFontSize int        `json:"stop_label_font_size" yaml:"stop_label_font_size" validate:"gte=0,lte=100000"`
	StopLabelOffset   [2]float64 `json:"stop_label_offset" yaml:"stop_label_offset"`
	UnderlayerColor   Color      `json:"underlayer_color" yaml:"underlayer_color"`
	UnderlayerWidth   float64    `json:"underlayer_width" yaml:"underlayer_width" validate:"gte=0,lte=100000"`
	ColorPalette      []Color    `json:"color_palette" yaml:"color_palette"`
}

// Network is the read-only view of a catalogue the renderer draws.
type Network interface {
	SortedBuses() []catalogue.Bus
	StopsOnRoutes() []catalogue.Stop
	Stop(id catalogue.StopID) catalogue.Stop
}

// Renderer draws maps with fixed settings.
type Renderer struct {
	settings Settings
}

// NewRenderer returns a renderer using s.
func NewRenderer(s Settings) *Renderer {
	return &Renderer{settings: s}
}

// Settings returns the renderer's settings.
func (r *Renderer) Settings() Settings {
	return r.settings
}

// Render writes the SVG map of n to w. Layers are drawn in order: route
// lines, bus labels, stop circles, stop labels.
func (r *Renderer) Render(w io.Writer, n Network) error {
	var buses []catalogue.Bus
	for _, bus := range n.SortedBuses() {
		if len(bus.Stops) > 0 {
			buses = append(buses, bus)
		}
	}
	stops := n.StopsOnRoutes()

	points := make([]geo.Coordinates, 0, len(stops))
	for _, stop := range stops {
		points = append(points, stop.Coords)
	}
	projector := newSphereProjector(points, r.settings.Width, r.settings.Height, r.settings.Padding)

	var doc document
	r.addRouteLines(&doc, n, buses, projector)
	r.addBusLabels(&doc, n, buses, projector)
	r.addStopCircles(&doc, stops, projector)
	r.addStopLabels(&doc, stops, projector)
	return doc.writeTo(w)
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(n Network) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) paletteColor(i int) Color {
	if len(r.settings.ColorPalette) == 0 {
		return NoneColor
	}
	return r.settings.ColorPalette[i%len(r.settings.ColorPalette)]
}

func (r *Renderer) addRouteLines(doc *document, n Network, buses []catalogue.Bus, projector sphereProjector) {
	for i, bus := range buses {
		line := polyline{
			pathProps: pathProps{
				fill:        NoneColor,
				stroke:      r.paletteColor(i),
				strokeWidth: ptr(r.settings.LineWidth),
				lineCap:     lineCapRound,
				lineJoin:    lineJoinRound,
			},
		}
		for _, id := range bus.Stops {
			line.points = append(line.points, projector.project(n.Stop(id).Coords))
		}
		doc.add(line)
	}
}

// addBusLabels labels each bus at its first stop, and a linear bus also at
// its far terminal when that differs from the first stop.
func (r *Renderer) addBusLabels(doc *document, n Network, buses []catalogue.Bus, projector sphereProjector) {
	for i, bus := range buses {
		label := text{
			offset:     Point{X: r.settings.BusLabelOffset[0], Y: r.settings.BusLabelOffset[1]},
			fontSize:   r.settings.BusLabelFontSize,
			fontFamily: "Verdana",
			fontWeight: "bold",
			data:       bus.Name,
		}

		anchors := []catalogue.StopID{bus.Stops[0]}
		if mid := bus.Stops[len(bus.Stops)/2]; !bus.IsRoundtrip && mid != bus.Stops[0] {
			anchors = append(anchors, mid)
		}

		for _, id := range anchors {
			label.position = projector.project(n.Stop(id).Coords)
			doc.add(r.underlayer(label))
			label.pathProps = pathProps{fill: r.paletteColor(i)}
			doc.add(label)
		}
	}
}

func (r *Renderer) addStopCircles(doc *document, stops []catalogue.Stop, projector sphereProjector) {
	for _, stop := range stops {
		doc.add(circle{
			pathProps: pathProps{fill: "white"},
			center:    projector.project(stop.Coords),
			radius:    r.settings.StopRadius,
		})
	}
}

func (r *Renderer) addStopLabels(doc *document, stops []catalogue.Stop, projector sphereProjector) {
	for _, stop := range stops {
		label := text{
			position:   projector.project(stop.Coords),
			offset:     Point{X: r.settings.StopLabelOffset[0], Y: r.settings.StopLabelOffset[1]},
			fontSize:   r.settings.StopLabelFontSize,
			fontFamily: "Verdana",
			data:       stop.Name,
		}
		doc.add(r.underlayer(label))
		label.pathProps = pathProps{fill: "black"}
		doc.add(label)
	}
}

// underlayer returns a copy of t styled as the halo drawn beneath it.
func (r *Renderer) underlayer(t text) text {
	color := Color(r.settings.UnderlayerColor.String())
	t.pathProps = pathProps{
		fill:        color,
		stroke:      color,
		strokeWidth: ptr(r.settings.UnderlayerWidth),
		lineCap:     lineCapRound,
		lineJoin:    lineJoinRound,
	}
	return t
}
