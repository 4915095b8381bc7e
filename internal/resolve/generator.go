package resolve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rankchat/rankchat/internal/conversation"
	"github.com/rankchat/rankchat/internal/llm"
	"github.com/rankchat/rankchat/internal/observability"
	"github.com/rankchat/rankchat/internal/reports"
)

const generatorSystemPrompt = `You translate questions about keyword ranking reports into a single PostgreSQL SELECT statement.
Rules:
- Output ONLY the SQL statement, no prose and no markdown fences.
- Read from the reports_master table only. Never write, alter, or drop anything.
- client_name values are stored lowercase; month values are full capitalized names.
- Lower ranking numbers are better.`

// Generator synthesizes SQL from a (possibly rewritten) question plus the
// table schema, known entities, and recent conversation turns.
type Generator struct {
	client  llm.Client
	timeout time.Duration
}

func NewGenerator(client llm.Client, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Generator{client: client, timeout: timeout}
}

func (g *Generator) Generate(ctx context.Context, question, schema string, entityNames []string, history []conversation.Turn) (string, error) {
	var b strings.Builder
	b.WriteString(schema)
	b.WriteString("\n\nEXAMPLES:\n")
	b.WriteString(reports.QueryExamples)
	if len(entityNames) > 0 {
		fmt.Fprintf(&b, "\n\nKNOWN CLIENT NAMES: %s", strings.Join(entityNames, ", "))
	}
	if len(history) > 0 {
		b.WriteString("\n\nRECENT CONVERSATION (oldest first):\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.UserQuery, turn.SystemResponse)
		}
	}
	fmt.Fprintf(&b, "\nQuestion: %s\nSQL:", question)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := g.client.Complete(ctx, llm.Request{System: generatorSystemPrompt, User: b.String()})
	observability.ObserveLLMCall("generate", err, time.Since(start))
	if err != nil {
		return "", &GenerationError{Err: err}
	}

	sqlText := StripMarkdownSQL(out)
	if sqlText == "" {
		return "", &GenerationError{Err: fmt.Errorf("model returned no sql")}
	}
	return sqlText, nil
}

// StripMarkdownSQL removes code fences and a trailing semicolon from model
// output. Models wrap SQL in fences despite instructions often enough that
// tolerating it is cheaper than retrying.
func StripMarkdownSQL(raw string) string {
	out := strings.TrimSpace(raw)
	if strings.HasPrefix(out, "```") {
		out = strings.TrimPrefix(out, "```sql")
		out = strings.TrimPrefix(out, "```")
		if idx := strings.Index(out, "```"); idx >= 0 {
			out = out[:idx]
		}
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, ";")
	return strings.TrimSpace(out)
}
