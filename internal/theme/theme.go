// Package theme supplies the decoded pixel assets the renderer composites:
// board and highlight colors, rasterized piece sprites, and label glyphs.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	yaml "gopkg.in/yaml.v3"
)

// ErrAssetMissing marks a sprite, color, or glyph absent from the theme.
// It is fatal to the render job that needed it.
var ErrAssetMissing = errors.New("theme: asset missing")

//go:embed theme.yaml
var defaultFiles embed.FS

// Colors are the solid fills used by the renderer.
type Colors struct {
	Light     color.RGBA
	Dark      color.RGBA
	MoveFrom  color.RGBA
	MoveTo    color.RGBA
	Check     color.RGBA
	Exploded  color.RGBA
	PanelBG   color.RGBA
	PanelText color.RGBA
	CoordText color.RGBA
}

// colorsFile is the YAML shape: hex strings, all keys optional.
type colorsFile struct {
	Light     string `yaml:"light"`
	Dark      string `yaml:"dark"`
	MoveFrom  string `yaml:"move_from"`
	MoveTo    string `yaml:"move_to"`
	Check     string `yaml:"check"`
	Exploded  string `yaml:"exploded"`
	PanelBG   string `yaml:"panel_bg"`
	PanelText string `yaml:"panel_text"`
	CoordText string `yaml:"coord_text"`
}

// Theme bundles colors with the sprite cache.
type Theme struct {
	Colors Colors

	cacheMu sync.RWMutex
	cache   map[spriteKey]*spriteImage
}

// Default loads the embedded theme.
func Default() (*Theme, error) { return Load("") }

// Load reads the embedded defaults and then applies overrides from the given
// YAML file if non-empty.
func Load(overridePath string) (*Theme, error) {
	raw, err := fs.ReadFile(defaultFiles, "theme.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded theme: %w", err)
	}
	t := &Theme{cache: make(map[spriteKey]*spriteImage)}
	if err := t.applyYAML(raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(overridePath) != "" {
		b, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("%w: theme file %s: %v", ErrAssetMissing, overridePath, err)
		}
		if err := t.applyYAML(b); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Theme) applyYAML(raw []byte) error {
	var f colorsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse theme yaml: %w", err)
	}
	set := func(dst *color.RGBA, v string) error {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		c, err := parseHexColor(v)
		if err != nil {
			return err
		}
		*dst = c
		return nil
	}
	for _, e := range []error{
		set(&t.Colors.Light, f.Light),
		set(&t.Colors.Dark, f.Dark),
		set(&t.Colors.MoveFrom, f.MoveFrom),
		set(&t.Colors.MoveTo, f.MoveTo),
		set(&t.Colors.Check, f.Check),
		set(&t.Colors.Exploded, f.Exploded),
		set(&t.Colors.PanelBG, f.PanelBG),
		set(&t.Colors.PanelText, f.PanelText),
		set(&t.Colors.CoordText, f.CoordText),
	} {
		if e != nil {
			return e
		}
	}
	return nil
}

// Face returns the glyph face for coordinate labels and pocket digits.
func (t *Theme) Face() font.Face { return basicfont.Face7x13 }

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("theme: bad color %q", s)
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		d := hexDigit(s[i])
		if d < 0 {
			return color.RGBA{}, fmt.Errorf("theme: bad color %q", s)
		}
		v = v<<4 | uint64(d)
	}
	c := color.RGBA{A: 0xff}
	if len(s) == 8 {
		c.A = uint8(v)
		v >>= 8
	}
	c.B = uint8(v)
	c.G = uint8(v >> 8)
	c.R = uint8(v >> 16)
	return c, nil
}

func hexDigit(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}
