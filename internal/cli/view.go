package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newViewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view [days]",
		Short: "Show the activity dashboard",
		Long: `Show the activity dashboard. days bounds the streak and the
"of N days" label; it defaults to view.days (365).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := a.cfg.View.Days
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid days %q: must be a whole number", args[0])
				}
				if n < 0 {
					return fmt.Errorf("invalid days %d: cannot be negative", n)
				}
				days = n
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			return a.reporter.Render(cmd.OutOrStdout(), s.Activities(), days)
		},
	}
}
