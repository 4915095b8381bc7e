package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rankchat/rankchat/internal/observability"
	"github.com/rankchat/rankchat/internal/reports"
)

// writeKeywordPattern catches data- and schema-mutating verbs anywhere in a
// statement, in any casing. Word boundaries keep column names like
// "updated_at" out of the match.
var writeKeywordPattern = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|truncate|create|grant|revoke|merge)\b`)

var fromClausePattern = regexp.MustCompile(`(?i)\bfrom\b`)

// SQLValidator is a conservative allow-list filter, not a parser. It never
// admits write verbs regardless of context.
type SQLValidator struct {
	table string
}

func NewSQLValidator() *SQLValidator {
	return &SQLValidator{table: reports.TableName}
}

func (v *SQLValidator) Validate(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return v.reject(ViolationSyntax, "statement is empty")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") {
		return v.reject(ViolationSecurity, "statement must start with SELECT")
	}
	if match := writeKeywordPattern.FindString(trimmed); match != "" {
		return v.reject(ViolationSecurity, fmt.Sprintf("statement contains forbidden keyword %q", strings.ToUpper(match)))
	}

	if !strings.Contains(strings.ToLower(trimmed), v.table) {
		return v.reject(ViolationSchema, fmt.Sprintf("statement must reference the %s table", v.table))
	}

	if !fromClausePattern.MatchString(trimmed) {
		return v.reject(ViolationSyntax, "statement has no FROM clause")
	}
	if detail := checkBalance(trimmed); detail != "" {
		return v.reject(ViolationSyntax, detail)
	}

	return nil
}

func (v *SQLValidator) reject(kind ViolationKind, detail string) error {
	observability.IncrementSQLRejection(string(kind))
	return &ValidationError{Kind: kind, Detail: detail}
}

// checkBalance verifies parentheses nest correctly and quoted regions close,
// ignoring parentheses inside string literals and quoted identifiers.
func checkBalance(sqlText string) string {
	depth := 0
	inSingle := false
	inDouble := false
	for _, r := range sqlText {
		switch {
		case inSingle:
			if r == '\'' {
				inSingle = false
			}
		case inDouble:
			if r == '"' {
				inDouble = false
			}
		case r == '\'':
			inSingle = true
		case r == '"':
			inDouble = true
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return "unbalanced parentheses"
			}
		}
	}
	if depth != 0 {
		return "unbalanced parentheses"
	}
	if inSingle || inDouble {
		return "unterminated quote"
	}
	return ""
}
