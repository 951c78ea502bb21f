// ABOUTME: Canvas extents and aspect-ratio presets for the dance floor
// ABOUTME: Maps 16:9 and 9:16 recording modes to pixel dimensions
package formation

import (
	"errors"
	"fmt"
)

// Aspect is a named aspect-ratio mode.
type Aspect string

const (
	Landscape Aspect = "16:9"
	Portrait  Aspect = "9:16"
)

// ErrUnknownAspect is returned for aspect strings other than 16:9 and 9:16.
var ErrUnknownAspect = errors.New("unknown aspect")

// Canvas is the logical drawing area in pixels. Y grows downwards.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ParseAspect validates an aspect string.
func ParseAspect(s string) (Aspect, error) {
	switch Aspect(s) {
	case Landscape, Portrait:
		return Aspect(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAspect, s)
}

// Canvas returns the pixel extents for the aspect mode. Unknown modes fall
// back to landscape.
func (a Aspect) Canvas() Canvas {
	if a == Portrait {
		return Canvas{Width: 720, Height: 1280}
	}
	return Canvas{Width: 1280, Height: 720}
}

// Toggle flips between landscape and portrait.
func (a Aspect) Toggle() Aspect {
	if a == Portrait {
		return Landscape
	}
	return Portrait
}

func (c Canvas) valid() bool {
	return c.Width > 0 && c.Height > 0
}

func (c Canvas) minSide() float64 {
	if c.Width < c.Height {
		return c.Width
	}
	return c.Height
}
