package sqlguard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyExtraction reports that no SQL text remained after stripping
// formatting noise from the translator output.
var ErrEmptyExtraction = errors.New("no SQL text after extraction")

// ErrNotSelect reports that the candidate statement does not begin with
// the SELECT token.
var ErrNotSelect = errors.New("statement is not a SELECT")

var forbiddenKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "TRUNCATE", "CREATE", "EXEC",
}

// Matching is token-aware so that column names like created_at or
// delta_updates do not trip the CREATE/UPDATE entries.
var forbiddenPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(forbiddenKeywords, "|") + `)\b`)

type ForbiddenKeywordError struct {
	Keyword string
}

func (e *ForbiddenKeywordError) Error() string {
	return fmt.Sprintf("statement contains forbidden keyword %s", e.Keyword)
}

// Statement is SQL text that has passed Validate. The unexported field is
// the point: an unvalidated string cannot be handed to the executor.
type Statement struct {
	text string
}

func (s Statement) String() string { return s.text }

// Extract recovers a bare SQL string from raw translator output. It strips
// surrounding whitespace, a markdown code fence (with or without a language
// tag on the opening line) and a single trailing semicolon. It does not
// inspect SQL grammar. Running Extract on its own output is a no-op.
func Extract(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		text = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	if text == "" {
		return "", ErrEmptyExtraction
	}
	return text, nil
}

// Validate enforces the read-only aggregate contract: the statement must
// begin with SELECT and must not contain a mutating keyword anywhere,
// case-insensitively. It is pure and runs before any database I/O.
//
// This is a denylist, not a parser. A keyword inside a string literal
// still trips it, and a hostile statement that avoids every listed token
// is not caught here; that residual risk is accepted.
func Validate(candidate string) (Statement, error) {
	trimmed := strings.TrimSpace(candidate)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return Statement{}, ErrNotSelect
	}
	if match := forbiddenPattern.FindString(trimmed); match != "" {
		return Statement{}, &ForbiddenKeywordError{Keyword: strings.ToUpper(match)}
	}
	return Statement{text: trimmed}, nil
}
