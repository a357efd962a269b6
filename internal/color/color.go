// Package color assigns each output key a stable terminal color derived from
// a hash of the key itself, so that a task keeps its color across runs and
// across machines.
package color

import (
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Hash returns the color for a key. The same key always produces the same
// color.
func Hash(s string) lipgloss.AdaptiveColor {
	return globalColorer.hash(s)
}

// RenderHash renders s in its own hashed color.
func RenderHash(s string) string {
	return globalColorer.render(s)
}

var globalColorer = &colorer{
	colorCache:  map[string]lipgloss.AdaptiveColor{},
	renderCache: map[string]string{},
}

type colorer struct {
	mu          sync.Mutex
	colorCache  map[string]lipgloss.AdaptiveColor
	renderCache map[string]string
}

func (c *colorer) render(s string) string {
	color := c.hash(s)

	c.mu.Lock()
	defer c.mu.Unlock()

	if out, ok := c.renderCache[s]; ok {
		return out
	}
	c.renderCache[s] = lipgloss.NewStyle().Foreground(color).Render(s)
	return c.renderCache[s]
}

func (c *colorer) hash(s string) lipgloss.AdaptiveColor {
	c.mu.Lock()
	defer c.mu.Unlock()

	if color, ok := c.colorCache[s]; ok {
		return color
	}
	hue := float64(hash(s)) / float64(math.MaxUint32)
	c.colorCache[s] = lipgloss.AdaptiveColor{
		Dark:  hsl{hue, 1.0, 0.7}.rgb().hex(),
		Light: hsl{hue, 1.0, 0.3}.rgb().hex(),
	}
	return c.colorCache[s]
}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

type rgb struct {
	// [0-255]
	r, g, b int
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.r, c.g, c.b)
}

type hsl struct {
	// [0-1]
	h, s, l float64
}

func (c hsl) rgb() rgb {
	if c.s == 0 {
		v := int(c.l * 255)
		return rgb{v, v, v}
	}

	var q float64
	if c.l < 0.5 {
		q = c.l * (1.0 + c.s)
	} else {
		q = c.l + c.s - c.l*c.s
	}
	p := 2.0*c.l - q
	r := hueToRGB(p, q, c.h+(1.0/3.0))
	g := hueToRGB(p, q, c.h)
	b := hueToRGB(p, q, c.h-(1.0/3.0))

	return rgb{int(r * 255), int(g * 255), int(b * 255)}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1.0
	} else if t > 1.0 {
		t -= 1.0
	}

	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
