package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rankchat/rankchat/internal/llm"
	"github.com/rankchat/rankchat/internal/observability"
	"github.com/rankchat/rankchat/internal/reports"
)

const answerSystemPrompt = `You summarize keyword ranking query results for a marketing analyst.
Answer the user's question directly using only the rows provided. Be concise and concrete: name keywords, clients, and numbers.
If the rows are empty, say no matching data was found. Never invent values.`

const answerRowLimit = 50

// AnswerComposer turns an executed result set into a natural-language answer.
// Composition failures are non-fatal; callers fall back to SummarizeResult.
type AnswerComposer struct {
	client  llm.Client
	timeout time.Duration
}

func NewAnswerComposer(client llm.Client, timeout time.Duration) *AnswerComposer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &AnswerComposer{client: client, timeout: timeout}
}

func (a *AnswerComposer) Compose(ctx context.Context, question, sqlText string, result reports.Result) (string, error) {
	rows := result.Rows
	truncated := false
	if len(rows) > answerRowLimit {
		rows = rows[:answerRowLimit]
		truncated = true
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode result rows: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nSQL used:\n%s\n\nResult rows (%d total", question, sqlText, len(result.Rows))
	if truncated {
		fmt.Fprintf(&b, ", first %d shown", answerRowLimit)
	}
	fmt.Fprintf(&b, "):\n%s\n\nAnswer:", encoded)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	out, err := a.client.Complete(ctx, llm.Request{System: answerSystemPrompt, User: b.String()})
	observability.ObserveLLMCall("answer", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("compose answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// SummarizeResult renders a plain tabular summary of a result set. It is the
// deterministic fallback when answer composition fails.
func SummarizeResult(result reports.Result) string {
	if len(result.Rows) == 0 {
		return "The query ran successfully but returned no rows."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d row(s).\n", len(result.Rows))
	b.WriteString(strings.Join(result.Columns, " | "))
	b.WriteString("\n")

	shown := result.Rows
	if len(shown) > 20 {
		shown = shown[:20]
	}
	for _, row := range shown {
		values := make([]string, 0, len(result.Columns))
		for _, col := range result.Columns {
			values = append(values, formatCell(row[col]))
		}
		b.WriteString(strings.Join(values, " | "))
		b.WriteString("\n")
	}
	if len(result.Rows) > len(shown) {
		fmt.Fprintf(&b, "... and %d more row(s).\n", len(result.Rows)-len(shown))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCell(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
