package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
)

const (
	defaultWidth    = 40
	sparklineHeight = 3
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			PaddingLeft(2)

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))

	confidenceStyles = map[insight.Confidence]lipgloss.Style{
		insight.ConfidenceHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		insight.ConfidenceMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		insight.ConfidenceLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

func text(res *analysis.Result, o options) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("habitlens: " + subjectLabel(res)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s  %d memories, %d progress logs",
		res.GeneratedAt.UTC().Format(time.RFC3339), res.Records.Memories, res.Records.ProgressLogs)))
	b.WriteString("\n")
	if skipped := res.Records.SkippedMemories + res.Records.SkippedLogs; skipped > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d records skipped (unparseable timestamps)", skipped)))
		b.WriteString("\n")
	}

	if len(o.series.SleepHours) > 0 || len(o.series.Mood) > 0 {
		b.WriteString(sectionStyle.Render("Trends"))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Sleep hours") + "\n")
		b.WriteString(createSparkline(o.series.SleepHours, o.width) + "\n")
		b.WriteString(labelStyle.Render("Mood (1-5)") + "\n")
		b.WriteString(createSparkline(o.series.Mood, o.width) + "\n")
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Patterns (%d)", len(res.Patterns))))
	b.WriteString("\n")
	if len(res.Patterns) == 0 {
		b.WriteString(dimStyle.Render("No patterns detected yet. Keep logging!") + "\n")
	}
	for _, p := range res.Patterns {
		b.WriteString(titleStyle.Render(p.Title) + " " + confidenceBadge(p.Confidence) + "\n")
		b.WriteString("  " + p.Description + "\n")
		if p.Suggestion != "" {
			b.WriteString(suggestionStyle.Render("→ "+p.Suggestion) + "\n")
		}
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Predictions (%d)", len(res.Predictions))))
	b.WriteString("\n")
	bar := progress.New(
		progress.WithGradient("#00ff00", "#ff0000"),
		progress.WithWidth(o.width),
	)
	for _, p := range res.Predictions {
		b.WriteString(titleStyle.Render(string(p.Type)) + " " + dimStyle.Render(p.Timeframe) + "\n")
		b.WriteString("  " + bar.ViewAs(p.Probability) + "\n")
		b.WriteString("  " + p.Description + "\n")
		for _, advice := range []string{p.Prevention, p.Preparation} {
			if advice != "" {
				b.WriteString(suggestionStyle.Render("→ "+advice) + "\n")
			}
		}
	}

	if len(res.Prompts) > 0 {
		b.WriteString(sectionStyle.Render("Prompts"))
		b.WriteString("\n")
		for _, prompt := range res.Prompts {
			b.WriteString("• " + prompt + "\n")
		}
	}
	return b.String()
}

func confidenceBadge(c insight.Confidence) string {
	style, ok := confidenceStyles[c]
	if !ok {
		style = dimStyle
	}
	return style.Render("[" + string(c) + "]")
}

// createSparkline charts data, or a placeholder when there is none.
func createSparkline(data []float64, width int) string {
	if len(data) == 0 {
		return dimStyle.Render("no data")
	}

	spark := sparkline.New(width, sparklineHeight)
	for _, v := range data {
		spark.Push(v)
	}
	spark.Draw()

	return sparklineStyle.Render(spark.View())
}
