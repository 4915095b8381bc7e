package resolve

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rankchat/rankchat/internal/llm"
	"github.com/rankchat/rankchat/internal/observability"
)

const formatterSystemPrompt = `You rewrite user questions about keyword ranking reports so a SQL generator can answer them.
Fix spelling, expand shorthand, and normalize entity names to their exact stored form.
Return ONLY the rewritten question as a single line of plain text. Never answer the question yourself.`

// NormalizeQuestion trims surrounding whitespace and drops non-printing
// control characters. Nothing else is touched: symbols and non-ASCII letters
// carry meaning ("%", "café") and must reach the generator exactly as typed.
func NormalizeQuestion(question string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, question)
	return strings.TrimSpace(cleaned)
}

// Formatter rewrites user questions between attempts. It is bypassed on the
// first attempt so a well-formed question reaches generation verbatim.
type Formatter struct {
	client  llm.Client
	timeout time.Duration
}

func NewFormatter(client llm.Client, timeout time.Duration) *Formatter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Formatter{client: client, timeout: timeout}
}

// Format is the second-attempt rewrite: normalize the question without any
// failure context. The schema hint tells the model which columns exist so a
// rewrite can steer toward answerable phrasing.
func (f *Formatter) Format(ctx context.Context, question string, entityNames []string, schemaHint string) (string, error) {
	user := fmt.Sprintf(`%s%sRewrite this question so the client name, month, and year use their exact stored forms:

Question: %s

Rewritten question:`, schemaBlock(schemaHint), entityBlock(entityNames), question)

	return f.complete(ctx, "format", user)
}

// Reformat is the third-attempt rewrite: the previous attempt's question and
// failure are fed back so the model can correct what actually went wrong.
func (f *Formatter) Reformat(ctx context.Context, original, previous string, failure error, entityNames []string) (string, error) {
	detail := "the query returned no usable result"
	if failure != nil {
		detail = failure.Error()
	}
	user := fmt.Sprintf(`%sA previous rewrite of this question led to a failed query.

Original question: %s
Previous rewrite: %s
Failure: %s

Rewrite the original question differently so the failure is avoided. Keep the user's intent.

Rewritten question:`, entityBlock(entityNames), original, previous, detail)

	return f.complete(ctx, "reformat", user)
}

func (f *Formatter) complete(ctx context.Context, role, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	out, err := f.client.Complete(ctx, llm.Request{System: formatterSystemPrompt, User: user})
	observability.ObserveLLMCall(role, err, time.Since(start))
	if err != nil {
		return "", &FormattingError{Err: err}
	}

	rewritten := strings.Join(strings.Fields(out), " ")
	if rewritten == "" {
		return "", &FormattingError{Err: fmt.Errorf("model returned an empty rewrite")}
	}
	return rewritten, nil
}

func schemaBlock(schemaHint string) string {
	if strings.TrimSpace(schemaHint) == "" {
		return ""
	}
	return fmt.Sprintf(`The data being asked about:
%s

`, schemaHint)
}

func entityBlock(entityNames []string) string {
	if len(entityNames) == 0 {
		return ""
	}
	return fmt.Sprintf(`Known client names (use these exact spellings, lowercase):
%s

`, strings.Join(entityNames, ", "))
}
