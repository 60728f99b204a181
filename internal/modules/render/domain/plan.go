package domain

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Command is one drawing step of a card. Commands are applied in order;
// later commands paint over earlier ones.
type Command interface {
	Kind() string
}

// FillRect paints a vertical gradient (Top == Bottom for a solid fill).
type FillRect struct {
	Rect   Rect  `json:"rect"`
	Top    Color `json:"top"`
	Bottom Color `json:"bottom"`
}

type FillDisc struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Color  Color   `json:"color"`
}

// StrokeArc strokes an arc with round caps.
type StrokeArc struct {
	Center   Point   `json:"center"`
	Radius   float64 `json:"radius"`
	Width    float64 `json:"width"`
	StartDeg float64 `json:"start_deg"`
	SweepDeg float64 `json:"sweep_deg"`
	Color    Color   `json:"color"`
}

// PercentLabel draws Value at Size followed by Suffix at SuffixSize, the
// pair centred on Center both ways.
type PercentLabel struct {
	Center     Point   `json:"center"`
	Value      string  `json:"value"`
	Suffix     string  `json:"suffix"`
	Size       float64 `json:"size"`
	SuffixSize float64 `json:"suffix_size"`
	Color      Color   `json:"color"`
}

// Chip draws left-aligned text on a highlight rectangle covering the text
// bounds grown by Padding.
type Chip struct {
	Origin     Point   `json:"origin"`
	Text       string  `json:"text"`
	Size       float64 `json:"size"`
	Color      Color   `json:"color"`
	Background Color   `json:"background"`
	Padding    float64 `json:"padding"`
}

// CenteredText draws text whose advance is centred on Anchor.X, baseline at Anchor.Y.
type CenteredText struct {
	Anchor Point   `json:"anchor"`
	Text   string  `json:"text"`
	Size   float64 `json:"size"`
	Color  Color   `json:"color"`
}

// Image scales a PNG proportionally into Rect, anchored top-left.
type Image struct {
	Rect Rect   `json:"rect"`
	Path string `json:"path"`
}

func (FillRect) Kind() string     { return "fill_rect" }
func (FillDisc) Kind() string     { return "fill_disc" }
func (StrokeArc) Kind() string    { return "stroke_arc" }
func (PercentLabel) Kind() string { return "percent_label" }
func (Chip) Kind() string         { return "chip" }
func (CenteredText) Kind() string { return "centered_text" }
func (Image) Kind() string        { return "image" }

// TitleCase upper-cases the first letter of every word.
func TitleCase(name string) string {
	return cases.Title(language.French).String(strings.TrimSpace(name))
}

// SweepDegrees maps a progress ratio to the arc sweep. Not clamped.
func SweepDegrees(ratio float64) float64 {
	return ratio * 360
}

// BuildPlan lays out the card for name and ratio. It is a pure function of
// its inputs: the same arguments always give the same commands.
func BuildPlan(name string, ratio float64, l Layout) []Command {
	cmds := []Command{
		FillRect{Rect: l.Bounds(), Top: l.BackgroundTop, Bottom: l.BackgroundBottom},
	}
	if l.LogoPath != "" {
		cmds = append(cmds, Image{Rect: l.LogoRect, Path: l.LogoPath})
	}
	cmds = append(cmds,
		FillDisc{Center: l.RingCenter, Radius: l.RingRadius, Color: l.Track},
		StrokeArc{
			Center:   l.RingCenter,
			Radius:   l.RingRadius - l.RingInset,
			Width:    l.RingStroke,
			StartDeg: -90,
			SweepDeg: SweepDegrees(ratio),
			Color:    l.Brand,
		},
		PercentLabel{
			Center:     l.RingCenter,
			Value:      strconv.Itoa(Percent(ratio)),
			Suffix:     "%",
			Size:       l.PercentSize,
			SuffixSize: l.SuffixSize,
			Color:      l.Brand,
		},
	)

	y := l.NameBaseline
	if title := TitleCase(name); title != "" {
		cmds = append(cmds, Chip{Origin: Point{X: l.TextLeft, Y: y}, Text: title, Size: l.NameSize, Color: l.ChipText, Background: l.Chip, Padding: l.ChipPadding})
	}
	for _, line := range l.Lines {
		y += l.RowGap
		cmds = append(cmds, Chip{Origin: Point{X: l.TextLeft, Y: y}, Text: line, Size: l.LineSize, Color: l.ChipText, Background: l.Chip, Padding: l.ChipPadding})
	}

	if l.FooterText != "" {
		cmds = append(cmds, CenteredText{
			Anchor: Point{X: float64(l.Width) / 2, Y: float64(l.Height) - l.FooterMargin},
			Text:   l.FooterText,
			Size:   l.FooterSize,
			Color:  l.Footer,
		})
	}
	return cmds
}

type taggedCommand struct {
	Kind string  `json:"kind"`
	Op   Command `json:"op"`
}

// MarshalPlan renders a plan as indented JSON, one {kind, op} object per command.
func MarshalPlan(cmds []Command) ([]byte, error) {
	tagged := make([]taggedCommand, len(cmds))
	for i, c := range cmds {
		tagged[i] = taggedCommand{Kind: c.Kind(), Op: c}
	}
	return json.MarshalIndent(tagged, "", "  ")
}
