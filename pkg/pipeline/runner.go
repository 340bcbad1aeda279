package pipeline

import (
	"context"
	"encoding/json"
	"image"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pollcard/pkg/cache"
	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/observability"
	"github.com/matzehuels/pollcard/pkg/render/card"
	"github.com/matzehuels/pollcard/pkg/results"
)

// Runner executes the pipeline with caching. It is safe for concurrent use.
type Runner struct {
	Renderer *card.Renderer
	Cache    cache.Cache
	Keyer    cache.Keyer
	// Writer stores persisted images. Nil disables persistence even when
	// Options.Persist is set.
	Writer *results.FileWriter
	// TTL is the lifetime of cached images.
	TTL    time.Duration
	Logger *log.Logger

	paramsOnce sync.Once
	paramsHash string
}

// NewRunner creates a runner. Nil cache, keyer and logger select a
// [cache.NullCache], the default keyer and the default logger.
func NewRunner(r *card.Renderer, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Renderer: r,
		Cache:    c,
		Keyer:    keyer,
		TTL:      cache.TTLRender,
		Logger:   logger,
	}
}

// Execute renders the requested kinds and optionally persists them.
func (r *Runner) Execute(ctx context.Context, req card.Request, opts Options) (*Result, error) {
	start := time.Now()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if opts.Persist && r.Writer == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "persistence requested but no output directory configured")
	}
	key, err := results.YearAndWeek(req.Date)
	if err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	res := &Result{Key: key}
	renderStart := time.Now()
	hits, err := r.renderKinds(ctx, req, opts, res)
	if err != nil {
		return nil, err
	}
	res.Stats.RenderTime = time.Since(renderStart)
	res.CacheHit = hits == len(opts.Kinds)
	for _, kind := range opts.Kinds {
		res.Stats.Bytes += len(res.Image(kind))
	}

	if opts.Persist {
		res.Paths = make(map[Kind]string, len(opts.Kinds))
		for _, kind := range opts.Kinds {
			p, err := r.Writer.Write(key, opts.fileName(kind, req.Selected), res.Image(kind))
			if err != nil {
				return nil, err
			}
			res.Paths[kind] = p
			logger.Debug("wrote image", "kind", kind, "path", p)
		}
	}

	res.Stats.TotalTime = time.Since(start)
	logger.Info("rendered card",
		"week", key.String(),
		"kinds", len(opts.Kinds),
		"cached", res.CacheHit,
		"bytes", res.Stats.Bytes,
		"duration", res.Stats.TotalTime.Round(time.Millisecond))
	return res, nil
}

// Render returns the PNG of one kind, using the cache.
func (r *Runner) Render(ctx context.Context, req card.Request, kind Kind, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, req, kind, opts)
	return data, err
}

// RenderWithCacheInfo is like Render but also reports whether the result
// came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, req card.Request, kind Kind, opts Options) ([]byte, bool, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeTimeout, err, "render %s", kind)
	}
	cacheKey := r.Keyer.RenderKey(req, r.keyOpts(kind, opts))
	if data, ok := r.lookup(ctx, cacheKey, kind, opts); ok {
		return data, true, nil
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, string(kind))
	data, err := r.draw(req, kind, opts)
	observability.Render().OnRenderComplete(ctx, string(kind), len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, cacheKey, kind, data, opts)
	return data, false, nil
}

// renderKinds fills res with every kind in opts and returns the number of
// cache hits. A plain request for both kinds that misses the cache is drawn
// in one [card.Renderer.Render] call; anything else fans out per kind.
func (r *Runner) renderKinds(ctx context.Context, req card.Request, opts Options, res *Result) (int, error) {
	if len(opts.Kinds) == len(Kinds) && !opts.Glitch.Enabled() {
		return r.renderPair(ctx, req, opts, res)
	}
	var (
		mu   sync.Mutex
		hits int
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range opts.Kinds {
		g.Go(func() error {
			data, hit, err := r.RenderWithCacheInfo(gctx, req, kind, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if hit {
				hits++
			}
			res.set(kind, data)
			return nil
		})
	}
	return hits, g.Wait()
}

func (r *Runner) renderPair(ctx context.Context, req card.Request, opts Options, res *Result) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeTimeout, err, "render")
	}
	keys := make(map[Kind]string, len(Kinds))
	var missing []Kind
	for _, kind := range Kinds {
		keys[kind] = r.Keyer.RenderKey(req, r.keyOpts(kind, opts))
		if data, ok := r.lookup(ctx, keys[kind], kind, opts); ok {
			res.set(kind, data)
			continue
		}
		missing = append(missing, kind)
	}
	if len(missing) == 0 {
		return len(Kinds), nil
	}

	start := time.Now()
	for _, kind := range missing {
		observability.Render().OnRenderStart(ctx, string(kind))
	}
	both, err := r.Renderer.Render(ctx, req)
	for _, kind := range missing {
		var n int
		if both != nil {
			n = len(pairImage(both, kind))
		}
		observability.Render().OnRenderComplete(ctx, string(kind), n, time.Since(start), err)
	}
	if err != nil {
		if ctx.Err() != nil {
			return 0, errors.Wrap(errors.ErrCodeTimeout, err, "render")
		}
		return 0, err
	}
	for _, kind := range missing {
		data := pairImage(both, kind)
		res.set(kind, data)
		r.store(ctx, keys[kind], kind, data, opts)
	}
	return len(Kinds) - len(missing), nil
}

func pairImage(res *card.Result, kind Kind) []byte {
	if kind == KindAvatar {
		return res.Avatar
	}
	return res.Main
}

// lookup reads the cache unless opts asks for a refresh. Cache errors are
// logged and treated as a miss.
func (r *Runner) lookup(ctx context.Context, cacheKey string, kind Kind, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, ok, err := r.Cache.Get(ctx, cacheKey)
	if err != nil {
		r.logger(opts).Warn("cache lookup failed", "kind", kind, "err", err)
	} else if ok {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, "render")
	return nil, false
}

func (r *Runner) store(ctx context.Context, cacheKey string, kind Kind, data []byte, opts Options) {
	if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err != nil {
		r.logger(opts).Warn("cache store failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "render", len(data))
}

func (r *Runner) draw(req card.Request, kind Kind, opts Options) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	if kind == KindAvatar {
		img, err = r.Renderer.DrawAvatar(req)
	} else {
		img, _, err = r.Renderer.DrawMain(req)
	}
	if err != nil {
		return nil, err
	}
	if opts.Glitch.Enabled() {
		img = opts.Glitch.Apply(img)
	}
	return card.EncodePNG(img)
}

// keyOpts folds the layout table and effect settings into the cache key so
// a config change never serves stale images.
func (r *Runner) keyOpts(kind Kind, opts Options) cache.RenderKeyOpts {
	r.paramsOnce.Do(func() {
		data, _ := json.Marshal(r.Renderer.Params())
		r.paramsHash = cache.Hash(data)
	})
	ko := cache.RenderKeyOpts{Kind: string(kind), Params: r.paramsHash}
	if opts.Glitch.Enabled() {
		data, _ := json.Marshal(opts.Glitch)
		ko.Glitch = true
		ko.Seed = opts.Glitch.Seed
		ko.Params = cache.Hash(append([]byte(r.paramsHash), data...))
	}
	return ko
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
