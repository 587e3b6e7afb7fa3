package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLogCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log <hours> <description...>",
		Short: "Log time spent on an activity",
		Example: `  habit-tracker log 1.5 read
  habit-tracker log 0.5 morning run
  habit-tracker log -- -0.5 correction`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid hours %q: must be a number", args[0])
			}
			description := strings.Join(args[1:], " ")

			s, err := a.openStore()
			if err != nil {
				return err
			}
			act, err := s.Append(hours, description)
			if err != nil {
				return err
			}
			a.logger.Debug("activity logged", zap.String("id", act.ID), zap.Time("timestamp", act.Timestamp))

			fmt.Fprintln(cmd.OutOrStdout(), "Activity logged successfully!")
			return nil
		},
	}
}
