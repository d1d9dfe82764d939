package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"themeplane/model"
	"themeplane/theme"
)

func newListCommand(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List themes with a valid config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd, opts)
			if err != nil {
				return err
			}
			catalog, err := repo.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, catalog)
			}

			out := cmd.OutOrStdout()
			if len(catalog) == 0 {
				fmt.Fprintf(out, "No themes found in %s\n", repo.Root())
				return nil
			}
			rows := make([][]string, 0, len(catalog))
			for _, entry := range catalog {
				rows = append(rows, []string{entry.Value, entry.Name})
			}
			fmt.Fprintln(out, renderTable([]string{"Folder", "Name"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newShowCommand(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:               "show <folder>",
		Short:             "Show a theme's config and field definitions",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeThemes(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd, opts)
			if err != nil {
				return err
			}
			record, err := repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, record)
			}
			renderRecord(cmd.OutOrStdout(), record)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderRecord(out io.Writer, record *theme.Record) {
	cfg := record.Config()
	authors := make([]string, 0, len(cfg.Authors))
	for _, a := range cfg.Authors {
		authors = append(authors, fmt.Sprintf("%s (%s)", a.Name, a.GithubProfile))
	}

	fmt.Fprintf(out, "Name:        %s\n", cfg.Name)
	fmt.Fprintf(out, "Folder:      %s\n", record.Folder())
	fmt.Fprintf(out, "Version:     %s\n", cfg.Version)
	fmt.Fprintf(out, "Description: %s\n", cfg.Description)
	fmt.Fprintf(out, "Authors:     %s\n", strings.Join(authors, ", "))
	fmt.Fprintf(out, "%-13s%s\n", title(record.Role().Name)+":", record.Role().FileName)

	fields := record.Fields()
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.Name, title(f.Type), formatValue(f.Value)})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Type", "Default"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
}

func formatValue(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func newDefaultsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:               "defaults <folder>",
		Short:             "Print the default value of every field that declares one",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeThemes(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd, opts)
			if err != nil {
				return err
			}
			record, err := repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, record.Defaults())
		},
	}
}

func newResolveCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:               "resolve <folder> <custom-json|->",
		Short:             "Merge custom values over a theme's defaults",
		Long:              "Merge a JSON object of custom values over a theme's defaults. Pass - to read the object from stdin.",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeThemes(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd, opts)
			if err != nil {
				return err
			}
			record, err := repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			input := args[1]
			if input == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read custom values: %w", err)
				}
				input = string(data)
			}

			custom, err := record.ParseCustomValues(input)
			if err != nil {
				return err
			}
			return writeJSON(cmd, record.Resolve(custom))
		},
	}
}

type validationResult struct {
	Folder string `json:"folder"`
	Name   string `json:"name,omitempty"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
}

func newValidateCommand(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load every theme folder and report failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd, opts)
			if err != nil {
				return err
			}
			folders, err := repo.Folders(cmd.Context())
			if err != nil {
				return err
			}

			results := make([]validationResult, 0, len(folders))
			failed := 0
			for _, folder := range folders {
				res := validationResult{Folder: folder, Valid: true}
				record, err := repo.Load(cmd.Context(), folder)
				if err != nil {
					res.Valid = false
					res.Error = err.Error()
					failed++
				} else {
					res.Name = record.Config().Name
				}
				results = append(results, res)
			}

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				renderValidation(cmd.OutOrStdout(), results)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d themes failed validation", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderValidation(out io.Writer, results []validationResult) {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "ok"
		detail := res.Name
		if !res.Valid {
			status = "invalid"
			detail = res.Error
		}
		rows = append(rows, []string{res.Folder, status, detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Folder", "Status", "Detail"}, rows, nil))
}

// completeThemes offers catalog folder names for the first argument.
func completeThemes(opts *options) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		repo, err := openRepository(cmd, opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		catalog, err := repo.ListAll(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return catalogNames(catalog), cobra.ShellCompDirectiveNoFileComp
	}
}

func catalogNames(catalog []model.CatalogEntry) []string {
	names := make([]string, 0, len(catalog))
	for _, entry := range catalog {
		names = append(names, entry.Value)
	}
	return names
}
