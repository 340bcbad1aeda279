package card

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/fonts"
)

// Renderer turns requests into card images. It holds only immutable data
// and is safe for concurrent use; every call allocates its own canvases and
// font faces.
type Renderer struct {
	params Params
	pal    palette
	fonts  *fonts.Set
}

// Result holds both encoded images of one request.
type Result struct {
	Main   []byte
	Avatar []byte
	Layout CardLayout
}

// NewRenderer validates params and resolves the theme. A nil font set
// selects [fonts.Default].
func NewRenderer(p Params, fs *fonts.Set) (*Renderer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	pal, err := p.Theme.resolve()
	if err != nil {
		return nil, err
	}
	if fs == nil {
		if fs, err = fonts.Default(); err != nil {
			return nil, err
		}
	}
	return &Renderer{params: p, pal: pal, fonts: fs}, nil
}

// Params returns the layout table the renderer was built with.
func (r *Renderer) Params() Params { return r.params }

// MeasureCard runs the measurement pass only.
func (r *Renderer) MeasureCard(req Request) (CardLayout, error) {
	if err := req.Validate(); err != nil {
		return CardLayout{}, err
	}
	return measureCard(gg.NewContext(1, 1), r.params, r.pal, newCardFaces(r.fonts, r.params), req)
}

// DrawMain renders the result card and returns it with the layout it was
// drawn from.
func (r *Renderer) DrawMain(req Request) (image.Image, CardLayout, error) {
	if err := req.Validate(); err != nil {
		return nil, CardLayout{}, err
	}
	f := newCardFaces(r.fonts, r.params)
	l, err := measureCard(gg.NewContext(1, 1), r.params, r.pal, f, req)
	if err != nil {
		return nil, CardLayout{}, err
	}
	img, err := drawCard(r.params, r.pal, f, req, l)
	if err != nil {
		return nil, CardLayout{}, err
	}
	return img, l, nil
}

// DrawAvatar renders the square gauge image.
func (r *Renderer) DrawAvatar(req Request) (image.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return drawAvatar(r.params, r.pal, newGaugeFaces(r.fonts, r.params.AvatarGauge), req)
}

// RenderMain renders and PNG-encodes the result card.
func (r *Renderer) RenderMain(req Request) ([]byte, error) {
	img, _, err := r.DrawMain(req)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// RenderAvatar renders and PNG-encodes the avatar.
func (r *Renderer) RenderAvatar(req Request) ([]byte, error) {
	img, err := r.DrawAvatar(req)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// Render produces both images concurrently. No partial result is returned:
// if either image fails the error of the first failure is reported.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var res Result
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, l, err := r.DrawMain(req)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Layout = l
		res.Main, err = EncodePNG(img)
		return err
	})
	g.Go(func() error {
		img, err := r.DrawAvatar(req)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Avatar, err = EncodePNG(img)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderSurface, err, "encode png")
	}
	return buf.Bytes(), nil
}
