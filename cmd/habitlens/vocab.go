package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fyrsmithlabs/habitlens/internal/insight"
	"github.com/fyrsmithlabs/habitlens/internal/vocabulary"
	"github.com/spf13/cobra"
)

func newVocabCmd(_ *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect and validate keyword vocabularies",
	}
	cmd.AddCommand(newVocabCheckCmd(), newVocabShowCmd())
	return cmd
}

func newVocabCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a vocabulary file",
		Long: `Validate a TOML vocabulary file and list the vocabularies it replaces.

Example:
  habitlens vocab check ~/.config/habitlens/vocabulary.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := vocabulary.LoadFile(args[0])
			if err != nil {
				return err
			}
			if _, err := f.Apply(insight.DefaultLexicon()); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMODE\tKEYWORDS")
			for _, v := range f.Vocabularies {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", v.Name, v.Mode, len(v.Keywords))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %d)\n", args[0], f.Version)
			return nil
		},
	}
}

func newVocabShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the effective vocabularies as TOML",
		Long: `Print the vocabularies the engine would use, as a vocabulary file. With a
file argument its vocabularies replace the built-in ones; the output is a
convenient starting point for a custom vocabulary.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lex := insight.DefaultLexicon()
			if len(args) == 1 {
				var err error
				if lex, err = vocabulary.Load(args[0], lex); err != nil {
					return err
				}
			}
			return vocabulary.Write(cmd.OutOrStdout(), lex)
		},
	}
}
