package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Tool names.
const (
	ToolAnalyzePatterns   = "analyze_patterns"
	ToolPredictInsights   = "predict_insights"
	ToolContextualPrompts = "contextual_prompts"
)

type documentInput struct {
	UserID       string                   `json:"user_id,omitempty" jsonschema:"User the records belong to"`
	Profile      *insight.UserProfile     `json:"profile,omitempty" jsonschema:"Static profile used to phrase suggestions"`
	Memories     []insight.MemoryDoc      `json:"memories,omitempty" jsonschema:"Free-text observations with RFC 3339 created_at timestamps"`
	ProgressLogs []insight.ProgressLogDoc `json:"progress_logs,omitempty" jsonschema:"Dated check-ins with optional mood, sleep_hours, weight and notes"`
}

func (in documentInput) document() insight.Document {
	doc := insight.Document{
		UserID:       in.UserID,
		Memories:     in.Memories,
		ProgressLogs: in.ProgressLogs,
	}
	if in.Profile != nil {
		doc.Profile = *in.Profile
	}
	return doc
}

type patternsOutput struct {
	ID       string                   `json:"id"`
	UserID   string                   `json:"user_id,omitempty"`
	Records  analysis.RecordCounts    `json:"records"`
	Patterns []insight.PatternInsight `json:"patterns"`
}

type predictionsOutput struct {
	ID          string                      `json:"id"`
	UserID      string                      `json:"user_id,omitempty"`
	Predictions []insight.PredictiveInsight `json:"predictions"`
}

type promptsOutput struct {
	ID      string   `json:"id"`
	UserID  string   `json:"user_id,omitempty"`
	Prompts []string `json:"prompts"`
}

func (s *Server) registerTools() {
	addDocumentTool(s, ToolAnalyzePatterns,
		"Detect eating, mood, energy and sleep patterns and the sleep-mood correlation in a user's memories and progress logs",
		func(res *analysis.Result) any {
			return patternsOutput{ID: res.ID, UserID: res.UserID, Records: res.Records, Patterns: res.Patterns}
		})

	addDocumentTool(s, ToolPredictInsights,
		"Project likely upcoming energy dips and mood changes from a user's detected patterns",
		func(res *analysis.Result) any {
			return predictionsOutput{ID: res.ID, UserID: res.UserID, Predictions: res.Predictions}
		})

	addDocumentTool(s, ToolContextualPrompts,
		"Compose short advisory sentences a coach can say to the user, based on confident patterns and likely predictions",
		func(res *analysis.Result) any {
			return promptsOutput{ID: res.ID, UserID: res.UserID, Prompts: res.Prompts}
		})
}

// addDocumentTool registers a tool that analyzes a document and returns one
// view of the result as JSON text and structured content.
func addDocumentTool(s *Server, name, description string, view func(*analysis.Result) any) {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args documentInput) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		s.metrics.IncrementActive(ctx, name)
		var toolErr error
		defer func() {
			s.metrics.DecrementActive(ctx, name)
			s.metrics.RecordInvocation(ctx, name, time.Since(start), toolErr)
		}()

		res, err := s.svc.Analyze(ctx, args.document())
		if err != nil {
			toolErr = fmt.Errorf("analysis failed: %w", err)
			s.logger.Warn(ctx, "tool failed", zap.String("tool", name), zap.Error(err))
			return nil, nil, toolErr
		}

		out := view(res)
		data, err := json.Marshal(out)
		if err != nil {
			toolErr = fmt.Errorf("encoding output: %w", err)
			return nil, nil, toolErr
		}

		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
			StructuredContent: out,
		}, nil, nil
	})
}
