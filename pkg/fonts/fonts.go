// Package fonts provides the font families used to draw result cards.
//
// Three families must be available to the drawing surface before any draw
// call: a regular sans for body text, a semi-bold sans for headers and
// highlighted labels, and a display face for the large gauge percentage.
// The defaults are the Go fonts (embedded in golang.org/x/image), which cover
// Latin and Cyrillic, so a Set works without any files on disk.
//
// Parsed fonts are immutable and shared. Faces keep glyph caches and are not
// safe for concurrent use, so callers create them per render via [Set.Face].
package fonts

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/pollcard/pkg/errors"
)

// Family names a font family role.
type Family string

const (
	Regular  Family = "regular"
	SemiBold Family = "semibold"
	Display  Family = "display"
)

// Families lists every role a Set must provide.
var Families = []Family{Regular, SemiBold, Display}

// Set holds one parsed font per family.
type Set struct {
	fonts map[Family]*truetype.Font
}

var (
	defaultSet     *Set
	defaultSetErr  error
	defaultSetOnce sync.Once
)

// Default returns the Go font set. The fonts are parsed once on first access.
func Default() (*Set, error) {
	defaultSetOnce.Do(func() {
		defaultSet, defaultSetErr = FromTTF(map[Family][]byte{
			Regular:  goregular.TTF,
			SemiBold: gomedium.TTF,
			Display:  gobold.TTF,
		})
	})
	return defaultSet, defaultSetErr
}

// FromTTF parses TrueType data for every family.
func FromTTF(data map[Family][]byte) (*Set, error) {
	s := &Set{fonts: make(map[Family]*truetype.Font, len(Families))}
	for _, fam := range Families {
		raw, ok := data[fam]
		if !ok {
			return nil, errors.New(errors.ErrCodeFontLoad, "missing font for family %q", fam)
		}
		f, err := truetype.Parse(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFontLoad, err, "parse %s font", fam)
		}
		s.fonts[fam] = f
	}
	return s, nil
}

// Load returns the default set with any family replaced by the TTF file at
// the matching path. Empty paths keep the default.
func Load(paths map[Family]string) (*Set, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return base, nil
	}

	s := &Set{fonts: make(map[Family]*truetype.Font, len(Families))}
	for fam, f := range base.fonts {
		s.fonts[fam] = f
	}
	for fam, path := range paths {
		if path == "" {
			continue
		}
		if _, known := base.fonts[fam]; !known {
			return nil, errors.New(errors.ErrCodeFontLoad, "unknown font family %q", fam)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFontLoad, err, "read %s font", fam)
		}
		f, err := truetype.Parse(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFontLoad, err, "parse %s font %s", fam, path)
		}
		s.fonts[fam] = f
	}
	return s, nil
}

// Face creates a new face of the family at the given size in points (72 DPI,
// so points equal pixels).
func (s *Set) Face(fam Family, size float64) font.Face {
	f, ok := s.fonts[fam]
	if !ok {
		panic(fmt.Sprintf("fonts: family %q not loaded", fam))
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
