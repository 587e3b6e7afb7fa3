package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/spf13/cobra"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every activity as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := store.FormatJSON
			switch {
			case format != "":
				parsed, err := store.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			case output != "":
				f = store.FormatFromPath(output)
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			data := store.NewExport(s.Activities(), time.Now())

			if output == "" {
				if err := data.Encode(cmd.OutOrStdout(), f); err != nil {
					return fmt.Errorf("encoding export: %w", err)
				}
				return nil
			}

			if err := writeExport(output, data, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d activities to %s\n", len(data.Activities), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// writeExport encodes data into path. A failed close means the export may
// not have reached the disk, so it is reported like a write error.
func writeExport(path string, data *store.ExportData, f store.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := data.Encode(file, f); err != nil {
		_ = file.Close()
		return fmt.Errorf("encoding export: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append activities from an export file",
		Long: `Append activities from a JSON or YAML export (chosen by extension).
Activities whose id is already stored are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer func() { _ = file.Close() }()

			data, err := store.DecodeExport(file, store.FormatFromPath(path))
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			n, err := s.Import(data.Activities)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d activities (%d skipped)\n", n, len(data.Activities)-n)
			return nil
		},
	}
}

func newPathCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the location of the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Path())
			return nil
		},
	}
}
