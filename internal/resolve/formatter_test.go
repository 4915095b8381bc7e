package resolve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rankchat/rankchat/internal/llm"
)

type fakeLLM struct {
	out      string
	err      error
	requests []llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.out, f.err
}

func TestNormalizeQuestion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  show keywords for efg ", "show keywords for efg"},
		{"what % of keywords improved for café?", "what % of keywords improved for café?"},
		{"what's the #1 keyword?!", "what's the #1 keyword?!"},
		{"top-10 rankings, please.", "top-10 rankings, please."},
		{"show\x00 keywords\x07 for efg", "show keywords for efg"},
		{" \t\n ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeQuestion(tc.in); got != tc.want {
			t.Fatalf("NormalizeQuestion(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatIncludesEntityNamesAndSchema(t *testing.T) {
	client := &fakeLLM{out: "show keywords for client efg in December 2025"}
	f := NewFormatter(client, 0)

	out, err := f.Format(context.Background(), "show keywords for EFG", []string{"abc", "efg"}, "TABLE: reports_master")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if out != client.out {
		t.Fatalf("Format() = %q", out)
	}
	prompt := client.requests[0].User
	for _, fragment := range []string{"abc, efg", "show keywords for EFG", "TABLE: reports_master"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}

func TestFormatCollapsesMultilineOutput(t *testing.T) {
	client := &fakeLLM{out: "show keywords\nfor client efg"}
	f := NewFormatter(client, 0)

	out, err := f.Format(context.Background(), "q", nil, "")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if out != "show keywords for client efg" {
		t.Fatalf("Format() = %q", out)
	}
}

func TestFormatWrapsClientError(t *testing.T) {
	client := &fakeLLM{err: errors.New("rate limited")}
	f := NewFormatter(client, 0)

	_, err := f.Format(context.Background(), "q", nil, "")
	var ferr *FormattingError
	if !errors.As(err, &ferr) {
		t.Fatalf("Format() error = %v, want *FormattingError", err)
	}
}

func TestReformatIncludesFailureContext(t *testing.T) {
	client := &fakeLLM{out: "rewritten"}
	f := NewFormatter(client, 0)

	failure := errors.New(`column "kw" does not exist`)
	_, err := f.Reformat(context.Background(), "original q", "previous rewrite", failure, []string{"efg"})
	if err != nil {
		t.Fatalf("Reformat() error = %v", err)
	}
	prompt := client.requests[0].User
	for _, fragment := range []string{"original q", "previous rewrite", `column "kw" does not exist`} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}
