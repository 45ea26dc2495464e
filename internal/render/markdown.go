package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
)

func markdown(res *analysis.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Insights for %s\n\n", subjectLabel(res))
	fmt.Fprintf(&b, "_Generated %s from %d memories and %d progress logs._\n",
		res.GeneratedAt.UTC().Format(time.RFC3339), res.Records.Memories, res.Records.ProgressLogs)

	b.WriteString("\n## Patterns\n\n")
	if len(res.Patterns) == 0 {
		b.WriteString("No patterns detected yet.\n")
	}
	for _, p := range res.Patterns {
		fmt.Fprintf(&b, "### %s\n\n", p.Title)
		fmt.Fprintf(&b, "%s\n\n", p.Description)
		fmt.Fprintf(&b, "- Type: `%s`\n- Confidence: %s\n", p.Type, p.Confidence)
		if p.Suggestion != "" {
			fmt.Fprintf(&b, "\n> %s\n", p.Suggestion)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Predictions\n\n")
	if len(res.Predictions) == 0 {
		b.WriteString("No predictions.\n\n")
	} else {
		b.WriteString("| Type | Probability | Timeframe | Description | Advice |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, p := range res.Predictions {
			advice := p.Prevention
			if advice == "" {
				advice = p.Preparation
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				p.Type, percent(p.Probability), p.Timeframe, cell(p.Description), cell(advice))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Prompts\n\n")
	if len(res.Prompts) == 0 {
		b.WriteString("No prompts.\n")
	}
	for i, prompt := range res.Prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, prompt)
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
