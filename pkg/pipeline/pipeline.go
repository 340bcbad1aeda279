// Package pipeline turns card requests into stored PNG images.
//
// A [Runner] performs, for each requested image kind:
//
//  1. Validate: reject malformed requests before any drawing
//  2. Cache lookup: keyed by the request, layout table and effect settings
//  3. Render: draw the main card or avatar with card.Renderer. Both kinds
//     without effects are drawn together by card.Renderer.Render
//  4. Effects: optionally glitch the image
//  5. Encode and cache the PNG
//
// and finally, when asked, writes the images to results/{year}/{week}/.
// The bot, HTTP API and CLI all go through the same Runner so cached images
// are shared between them.
//
// # Usage
//
//	runner := pipeline.NewRunner(renderer, cache, nil, logger)
//	res, err := runner.Execute(ctx, req, pipeline.Options{Persist: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Paths[pipeline.KindMain])
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/render/effects"
	"github.com/matzehuels/pollcard/pkg/results"
)

// Kind names an output image.
type Kind string

const (
	KindMain   Kind = "main"
	KindAvatar Kind = "avatar"
)

// Kinds lists every image kind.
var Kinds = []Kind{KindMain, KindAvatar}

// ParseKind validates s as a Kind. Matching is case-sensitive.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown image kind %q (want main or avatar)", s)
}

// Options control one pipeline execution.
type Options struct {
	// Kinds selects the images to produce. Empty means all.
	Kinds []Kind
	// Glitch post-processes images when enabled.
	Glitch effects.Glitch
	// Persist writes images below the runner's output directory.
	Persist bool
	// Name overrides the main image file name. The default is derived from
	// the selected option (Option3, NoOption).
	Name string
	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool
	Logger  *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Kinds) == 0 {
		o.Kinds = append([]Kind(nil), Kinds...)
	}
	seen := make(map[Kind]bool, len(o.Kinds))
	for _, k := range o.Kinds {
		if _, err := ParseKind(string(k)); err != nil {
			return err
		}
		if seen[k] {
			return errors.New(errors.ErrCodeInvalidInput, "image kind %q requested twice", k)
		}
		seen[k] = true
	}
	if o.Name != "" {
		if err := errors.ValidateArtifactName(o.Name); err != nil {
			return err
		}
	}
	if o.Glitch.NoiseRate < 0 || o.Glitch.NoiseRate > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "glitch noise rate %v out of range [0, 1]", o.Glitch.NoiseRate)
	}
	return nil
}

// fileName returns the persisted name of an image.
func (o Options) fileName(kind Kind, selected int) string {
	if kind == KindAvatar {
		return results.AvatarName
	}
	if o.Name != "" {
		return o.Name
	}
	return results.OptionName(selected)
}

// Result holds the outputs of one execution.
type Result struct {
	Main   []byte
	Avatar []byte
	// Key is the poll week the images belong to.
	Key results.Key
	// Paths holds written files by kind when persistence was requested.
	Paths map[Kind]string
	// CacheHit is true when every image came from the cache.
	CacheHit bool
	Stats    Stats
}

// Image returns the bytes of one kind.
func (r *Result) Image(k Kind) []byte {
	if k == KindAvatar {
		return r.Avatar
	}
	return r.Main
}

func (r *Result) set(k Kind, data []byte) {
	if k == KindAvatar {
		r.Avatar = data
	} else {
		r.Main = data
	}
}

// Stats records timing of an execution.
type Stats struct {
	RenderTime time.Duration
	TotalTime  time.Duration
	Bytes      int
}
