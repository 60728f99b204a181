package domain

import "fmt"

// Layout fixes every position, size and color of a card. Coordinates are
// canvas pixels; text sizes are pixel heights of the em box.
type Layout struct {
	Width  int
	Height int

	BackgroundTop    Color
	BackgroundBottom Color
	Brand            Color
	Track            Color
	ChipText         Color
	Chip             Color
	Footer           Color

	RingCenter Point
	RingRadius float64
	// RingInset moves the progress stroke inside the white disc.
	RingInset  float64
	RingStroke float64

	PercentSize float64
	SuffixSize  float64

	TextLeft     float64
	NameBaseline float64
	NameSize     float64
	LineSize     float64
	RowGap       float64
	ChipPadding  float64

	Lines      []string
	FooterText string
	FooterSize float64
	// FooterMargin is the distance from the canvas bottom to the footer baseline.
	FooterMargin float64

	LogoPath string
	LogoRect Rect
}

func DefaultLayout() Layout {
	brand := RGB(0x03, 0xb3, 0x7f)
	return Layout{
		Width:            600,
		Height:           315,
		BackgroundTop:    brand,
		BackgroundBottom: RGB(0x02, 0x8a, 0x62),
		Brand:            brand,
		Track:            White,
		ChipText:         White,
		Chip:             RGB(0x1d, 0x35, 0x57),
		Footer:           RGB(0xee, 0xee, 0xee),
		RingCenter:       Point{X: 460, Y: 130},
		RingRadius:       90,
		RingInset:        12,
		RingStroke:       10,
		PercentSize:      48,
		SuffixSize:       26,
		TextLeft:         40,
		NameBaseline:     100,
		NameSize:         30,
		LineSize:         22,
		RowGap:           48,
		ChipPadding:      8,
		Lines:            []string{"a voté sur les mesures", "Et vous ?"},
		FooterText:       "voterpourleclimat.fr",
		FooterSize:       16,
		FooterMargin:     20,
	}
}

func (l Layout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("layout size must be positive, got %dx%d", l.Width, l.Height)
	}
	if l.RingRadius <= 0 || l.RingStroke <= 0 {
		return fmt.Errorf("ring radius and stroke must be positive")
	}
	if l.RingInset >= l.RingRadius {
		return fmt.Errorf("ring inset %.1f exceeds radius %.1f", l.RingInset, l.RingRadius)
	}
	for name, size := range map[string]float64{"percent": l.PercentSize, "suffix": l.SuffixSize, "name": l.NameSize, "line": l.LineSize, "footer": l.FooterSize} {
		if size <= 0 {
			return fmt.Errorf("%s text size must be positive", name)
		}
	}
	return nil
}

func (l Layout) Bounds() Rect {
	return Rect{Max: Point{X: float64(l.Width), Y: float64(l.Height)}}
}
