package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/pipeline"
	"github.com/matzehuels/pollcard/pkg/render/card"
	"github.com/matzehuels/pollcard/pkg/render/effects"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	kinds    string // comma-separated image kinds
	outDir   string // overrides output.dir
	name     string // main image file name
	selected int    // 1-based highlighted option, -1 keeps the request's value
	pick     bool   // choose the highlighted option interactively
	glitch   bool
	seed     uint64
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command. The request is read from the
// file argument, or from stdin when the argument is "-" or missing.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{selected: -1}

	cmd := &cobra.Command{
		Use:   "render [request.json]",
		Short: "Render a card request to PNG",
		Long: `Render a card request to the main card and avatar images.

The request is JSON:

  {"date": "21.05.2024", "question": "...", "overall": 42,
   "options": [{"label": "...", "percentage": 40}, ...],
   "votes": 20, "selected": 2}

Images are written to results/{year}/{week}/ below the output directory,
named after the selected option (Option2.png, NoOption.png) and avatar.png.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return c.runRender(cmd.Context(), cmd.InOrStdin(), path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.kinds, "kind", "k", "", "image kind(s): main, avatar (comma-separated, default both)")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "output root directory (default from config)")
	cmd.Flags().StringVar(&opts.name, "name", "", "file name of the main image (default derived from the selection)")
	cmd.Flags().IntVar(&opts.selected, "selected", opts.selected, "highlight option N (1-based, 0 for none)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick the highlighted option interactively")
	cmd.Flags().BoolVar(&opts.glitch, "glitch", false, "apply the glitch effect")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "glitch random seed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdin io.Reader, path string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	kinds, err := parseKinds(opts.kinds)
	if err != nil {
		return err
	}

	req, err := readRequest(path, stdin)
	if err != nil {
		return err
	}
	if len(req.Labels) == 0 {
		req.Labels = cfg.Survey.Labels
	}
	if opts.selected >= 0 {
		req.Selected = opts.selected
	}
	if opts.pick {
		sel, ok, err := pickOption(req)
		if err != nil {
			return err
		}
		if !ok {
			printWarning("Nothing picked, no images rendered")
			return nil
		}
		req.Selected = sel
	}

	cc, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cfg, cc)
	if err != nil {
		cc.Close()
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering card...")
	spinner.Start()
	res, err := runner.Execute(ctx, req, pipeline.Options{
		Kinds:   kinds,
		Glitch:  glitchSettings(cfg.Glitch, opts),
		Persist: true,
		Name:    opts.name,
		Refresh: opts.refresh,
		Logger:  logger,
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Render complete")

	printSuccess("Rendered week %s", StyleHighlight.Render(res.Key.String()))
	for _, k := range kinds {
		printFile(res.Paths[k])
	}
	printRenderStats(res)
	return nil
}

// glitchSettings returns the effect to apply: none unless --glitch is set,
// then the configured effect or the built-in default.
func glitchSettings(configured effects.Glitch, opts renderOpts) effects.Glitch {
	if !opts.glitch {
		return effects.Glitch{}
	}
	g := configured
	if !g.Enabled() {
		g = effects.DefaultGlitch()
	}
	if opts.seed != 0 {
		g.Seed = opts.seed
	}
	return g
}

// parseKinds parses the --kind flag. Empty selects every kind.
func parseKinds(s string) ([]pipeline.Kind, error) {
	if s == "" {
		return append([]pipeline.Kind(nil), pipeline.Kinds...), nil
	}
	var kinds []pipeline.Kind
	for _, part := range strings.Split(s, ",") {
		k, err := pipeline.ParseKind(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// readRequest decodes a card request from path, or from stdin for "-".
func readRequest(path string, stdin io.Reader) (card.Request, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return card.Request{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open request")
		}
		defer f.Close()
		r = f
	}
	var req card.Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return card.Request{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request %s", path)
	}
	return req, nil
}
