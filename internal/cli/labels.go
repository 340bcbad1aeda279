package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pollcard/pkg/buildinfo"
	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/render/card"
)

// labelsCommand lists the qualitative gauge labels, or resolves the label
// of one overall percentage.
func (c *CLI) labelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "labels [PERCENT]",
		Short: "Show the qualitative labels of the gauge",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			labels := cfg.Survey.Labels
			if len(args) == 0 {
				printLabelsTable(labels, -1)
				return nil
			}
			pct, err := strconv.Atoi(args[0])
			if err != nil || pct < 0 || pct > 100 {
				return errors.New(errors.ErrCodeInvalidPercentage, "percentage must be an integer in [0, 100], got %q", args[0])
			}
			printLabelsTable(labels, pct)
			printNewline()
			printKeyValue(fmt.Sprintf("%d%%", pct), StyleHighlight.Render(card.QualitativeLabel(pct, labels)))
			return nil
		},
	}
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
