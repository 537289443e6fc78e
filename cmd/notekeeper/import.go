package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/notekeeper/pkg/adapters/fs"
)

func newImportCmd(a *app) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import <pattern>...",
		Short: "Import notes from JSON or YAML files",
		Long: `Import notes from every file matching the given patterns. Patterns support
"**" (for example "backups/**/*.json"). Both the current format and the
older browser and server formats are accepted. Ids and timestamps are kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			for _, pattern := range args {
				matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
				if err != nil {
					return fmt.Errorf("bad pattern %q: %w", pattern, err)
				}
				files = append(files, matches...)
			}
			if len(files) == 0 {
				return fmt.Errorf("no files match %s", strings.Join(args, ", "))
			}

			svc, err := a.service()
			if err != nil {
				return err
			}

			var imported, skipped int
			for _, f := range files {
				data, err := os.ReadFile(f)
				if err != nil {
					return err
				}
				notes, err := fs.CodecFor(f).Decode(data)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}

				for _, n := range notes {
					ok, err := svc.Import(cmd.Context(), n, overwrite)
					if err != nil {
						return fmt.Errorf("%s: %w", f, err)
					}
					if ok {
						imported++
					} else {
						skipped++
					}
				}
				a.logger.Debug("imported file", "file", f, "notes", len(notes))
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes from %d files (%d skipped)\n",
				imported, len(files), skipped)
			return err
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace notes whose id already exists")
	return cmd
}
