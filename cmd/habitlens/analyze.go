package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
	"github.com/fyrsmithlabs/habitlens/internal/render"
	"github.com/spf13/cobra"
)

type outputOptions struct {
	format string
	width  int
}

func (o *outputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", render.FormatText, "output format: text, markdown or json")
	cmd.Flags().IntVar(&o.width, "width", 40, "width of charts and bars in text output")
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	out := &outputOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze one user's memories and progress logs",
		Long: `Analyze a JSON document holding one user's profile, memories and
progress logs, and print the detected patterns, predictions and prompts.

Records whose timestamps cannot be parsed are skipped and counted.

Examples:
  habitlens analyze user.json
  cat user.json | habitlens analyze - --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(out.format)
			if err != nil {
				return err
			}

			in, err := openInput(cmd.InOrStdin(), firstArg(args))
			if err != nil {
				return err
			}
			doc, err := insight.ReadDocument(in)
			_ = in.Close()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := newRuntime(ctx, root)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			engine, err := rt.newEngine(nil)
			if err != nil {
				return err
			}
			svc, err := rt.newService(ctx, engine)
			if err != nil {
				return err
			}

			res, err := svc.Analyze(ctx, doc)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), res, doc, engine, format, out.width)
		},
	}
	out.bind(cmd)
	return cmd
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	out := &outputOptions{}
	cmd := &cobra.Command{
		Use:   "batch [file|-]",
		Short: "Analyze many users independently",
		Long: `Analyze a JSON document of the form {"subjects": [...]} where each subject
is a document accepted by "habitlens analyze". Subjects are analyzed in
parallel and reported in input order.

Examples:
  habitlens batch cohort.json --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(out.format)
			if err != nil {
				return err
			}

			in, err := openInput(cmd.InOrStdin(), firstArg(args))
			if err != nil {
				return err
			}
			batch, err := insight.ReadBatch(in)
			_ = in.Close()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := newRuntime(ctx, root)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			engine, err := rt.newEngine(nil)
			if err != nil {
				return err
			}
			svc, err := rt.newService(ctx, engine)
			if err != nil {
				return err
			}

			results, err := svc.AnalyzeBatch(ctx, batch.Subjects)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format == render.FormatJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Results []*analysis.Result `json:"results"`
				}{results})
			}
			for i, res := range results {
				if i > 0 {
					fmt.Fprintln(w, separator(format))
				}
				if err := writeResult(w, res, batch.Subjects[i], engine, format, out.width); err != nil {
					return err
				}
			}
			return nil
		},
	}
	out.bind(cmd)
	return cmd
}

func writeResult(w io.Writer, res *analysis.Result, doc insight.Document, engine *insight.Engine, format string, width int) error {
	opts := []render.Option{render.WithWidth(width)}
	if format == render.FormatText {
		in, _ := doc.Decode(engine.Location())
		opts = append(opts, render.WithSeries(render.SeriesFrom(in, engine.Thresholds())))
	}
	text, err := render.Format(res, format, opts...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

func separator(format string) string {
	if format == render.FormatMarkdown {
		return "\n---\n"
	}
	return strings.Repeat("─", 40)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
