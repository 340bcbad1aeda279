package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// questionCommand manages the weekly question.
func (c *CLI) questionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Create or show the weekly question",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "new TEXT...",
		Short: "Start a new weekly question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuestion(cmd.Context(), strings.Join(args, " "))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "latest",
		Short: "Show the current weekly question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuestion(cmd.Context(), "")
		},
	})
	return cmd
}

// runQuestion creates a question when text is non-empty and prints the
// current one otherwise.
func (c *CLI) runQuestion(ctx context.Context, text string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))
	svc := c.newService(store, nil, cfg)

	if text != "" {
		q, err := svc.CreateQuestion(ctx, text)
		if err != nil {
			return err
		}
		printSuccess("Created question %s", StyleHighlight.Render(q.ID))
		return nil
	}

	q, err := svc.LatestQuestion(ctx)
	if err != nil {
		return err
	}
	printKeyValue("ID", q.ID)
	printKeyValue("Date", q.Date())
	printKeyValue("Created", q.CreatedAt.Local().Format(time.DateTime))
	printKeyValue("Text", q.Text)
	return nil
}
