package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kisansense/internal/advisory"
	"kisansense/internal/config"
	"kisansense/internal/validation"
)

// loadContent reads the --content file, then CONTENT_FILE, then falls back
// to the embedded content. An explicitly named file must exist.
func loadContent(cmd *cobra.Command) (*config.ContentConfig, error) {
	path, _ := cmd.Flags().GetString("content")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return config.ParseContent(data)
	}
	if path = os.Getenv("CONTENT_FILE"); path != "" {
		return config.LoadContent(path)
	}
	return config.DefaultContent()
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a question from the advisory table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := loadContent(cmd)
			if err != nil {
				return err
			}
			table, err := advisory.FromContent(content)
			if err != nil {
				return err
			}
			language, _ := cmd.Flags().GetString("language")
			if language == "" {
				language = table.Source().Code
			}

			ans := advisory.NewResponder(table).Respond(cmd.Context(), strings.Join(args, " "), language)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ans.Text)
			fmt.Fprintf(out, "rule: %s, language: %s\n", ans.Outcome(), ans.Language.Code)
			if ans.Notice != nil {
				fmt.Fprintf(out, "note: %v\n", ans.Notice)
			}
			return nil
		},
	}
	cmd.Flags().StringP("language", "l", "", "answer language code or name")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a content file",
		Long: `Parses the content file, builds the advisory table and checks scheme
and news links. Languages that lack text for some entries are reported as
warnings: those answers fall back to the source language or translation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cmd.Flags().Set("content", args[0])
			}
			content, err := loadContent(cmd)
			if err != nil {
				return err
			}

			problems := contentProblems(content)
			table, err := advisory.FromContent(content)
			if err != nil {
				problems = append(problems, err)
			}

			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintln(out, "error:", p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problem(s) found", len(problems))
			}

			for _, l := range table.Languages() {
				if !table.Localized(l.Code) {
					fmt.Fprintf(out, "warning: %s (%s) is missing some advisory text\n", l.Name, l.Code)
				}
			}
			fmt.Fprintf(out, "ok: %d rules, %d languages, %d schemes, %d news items\n",
				len(table.Rules()), len(table.Languages()), len(content.Schemes), len(content.News))
			return nil
		},
	}
}

// contentProblems checks the parts of the content file the advisory table
// doesn't: scheme ids and links.
func contentProblems(content *config.ContentConfig) []error {
	var problems []error
	seen := make(map[string]bool)
	for i, s := range content.Schemes {
		if s.ID == "" || s.Name == "" {
			problems = append(problems, fmt.Errorf("scheme %d: id and name are required", i))
		}
		if seen[s.ID] {
			problems = append(problems, fmt.Errorf("scheme %q: duplicate id", s.ID))
		}
		seen[s.ID] = true
		if ok, msg := validation.ValidateURL(s.Link); !ok {
			problems = append(problems, fmt.Errorf("scheme %q: %s", s.ID, msg))
		}
	}
	for i, n := range content.News {
		if n.Title == "" {
			problems = append(problems, fmt.Errorf("news %d: title is required", i))
		}
		if n.URL != "" {
			if ok, msg := validation.ValidateURL(n.URL); !ok {
				problems = append(problems, fmt.Errorf("news %q: %s", n.Title, msg))
			}
		}
	}
	return problems
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List answer languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := loadContent(cmd)
			if err != nil {
				return err
			}
			table, err := advisory.FromContent(content)
			if err != nil {
				return errors.Join(errors.New("invalid content"), err)
			}

			out := cmd.OutOrStdout()
			for _, l := range table.Languages() {
				status := "complete"
				if !table.Localized(l.Code) {
					status = "partial"
				}
				if l.Code == table.Source().Code {
					status = "source"
				}
				fmt.Fprintf(out, "%-4s %-10s %-12s %s\n", l.Code, l.Name, l.Native, status)
			}
			return nil
		},
	}
}
