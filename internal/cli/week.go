package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/pipeline"
	"github.com/matzehuels/pollcard/pkg/results"
	"github.com/matzehuels/pollcard/pkg/survey"
)

type weekOpts struct {
	render     bool
	questionID string
	noCache    bool
}

// weekCommand shows where the images of a poll date live and can fill that
// directory with every variant of a stored question.
func (c *CLI) weekCommand() *cobra.Command {
	var opts weekOpts

	cmd := &cobra.Command{
		Use:   "week [DD.MM.YYYY]",
		Short: "Show or fill the results directory of a poll week",
		Long: `Show the ISO year and week of a poll date (default today) and its results
directory.

With --render the latest question (or --question ID) is tallied and one main
image per option plus NoOption.png and avatar.png are written to the week of
the question's date.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.render {
				if len(args) > 0 {
					return errors.New(errors.ErrCodeInvalidInput, "--render uses the question date; drop the date argument")
				}
				return c.runWeekRender(cmd.Context(), opts)
			}
			date := time.Now().Format(errors.DateLayout)
			if len(args) == 1 {
				date = args[0]
			}
			return c.runWeek(date)
		},
	}

	cmd.Flags().BoolVar(&opts.render, "render", false, "render all images of a stored question")
	cmd.Flags().StringVar(&opts.questionID, "question", "", "question ID (default latest)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	return cmd
}

func (c *CLI) runWeek(date string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	key, err := results.YearAndWeek(date)
	if err != nil {
		return err
	}
	printKeyValue("Date", date)
	printKeyValue("Year", StyleNumber.Render(strconv.Itoa(key.Year)))
	printKeyValue("Week", StyleNumber.Render(strconv.Itoa(key.Week)))
	printKeyValue("Directory", filepath.Join(cfg.Output.Dir, filepath.FromSlash(key.Dir())))
	return nil
}

func (c *CLI) runWeekRender(ctx context.Context, opts weekOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	store, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

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
	svc := c.newService(store, cc, cfg)

	id := opts.questionID
	if id == "" {
		q, err := svc.LatestQuestion(ctx)
		if err != nil {
			return err
		}
		id = q.ID
	}
	q, res, err := svc.Results(ctx, id)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	var paths []string
	for sel := 0; sel <= len(survey.Choices); sel++ {
		kinds := []pipeline.Kind{pipeline.KindMain}
		if sel == 0 {
			kinds = append(kinds, pipeline.KindAvatar)
		}
		out, err := runner.Execute(ctx, svc.Request(q, res, sel), pipeline.Options{
			Kinds:   kinds,
			Persist: true,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		for _, k := range kinds {
			paths = append(paths, out.Paths[k])
		}
	}
	prog.done("Week rendered")

	printResultsTable(q, res, svc.Config().OptionTexts)
	printNewline()
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
