package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the outcome of validating one statement.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allow creates a verdict that permits execution.
func Allow() Verdict {
	return Verdict{Allowed: true}
}

// Reject creates a verdict that blocks execution with a reason. The reason
// is also fed back to the generator as corrective feedback, so it should say
// what was wrong, not just that something was.
func Reject(reason string) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}

// BlockedKeywords are the write and DDL verbs that must never reach the
// catalog database, matched anywhere in the statement.
var BlockedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER",
	"TRUNCATE", "CREATE", "GRANT", "REVOKE",
}

var (
	blockedKeywordRe = regexp.MustCompile(`(?i)\b(` + strings.Join(BlockedKeywords, "|") + `)\b`)
	leadingKeywordRe = regexp.MustCompile(`^[A-Za-z]+`)
)

// Guard is the read-only statement boundary in front of the catalog
// database. Every generated statement passes through Validate before
// execution; there is no bypass path. The checks are deliberately
// over-conservative: a keyword inside a comment or string literal still
// rejects, because false rejection is safe and false acceptance is not.
type Guard struct{}

// New creates a statement guard.
func New() *Guard {
	return &Guard{}
}

// Validate checks a single SQL statement for read-only safety.
// Enforced, in order:
//  1. the statement is non-empty,
//  2. exactly one statement: no separators beyond one trailing semicolon,
//  3. the leading keyword is SELECT or WITH,
//  4. no blocked keyword occurs anywhere, comments and literals included.
func (g *Guard) Validate(statement string) Verdict {
	trimmed := strings.TrimSpace(statement)
	if trimmed == "" {
		return Reject("empty SQL statement")
	}

	// A single terminating semicolon is tolerated; anything after it or any
	// interior semicolon is statement chaining.
	single := strings.TrimSuffix(trimmed, ";")
	if strings.Contains(single, ";") {
		return Reject("multiple SQL statements are not allowed")
	}

	leading := leadingKeywordRe.FindString(single)
	if leading == "" {
		return Reject("statement must begin with SELECT")
	}
	switch strings.ToUpper(leading) {
	case "SELECT", "WITH":
	default:
		return Reject(fmt.Sprintf("only SELECT queries are allowed, got %q", strings.ToUpper(leading)))
	}

	if match := blockedKeywordRe.FindString(single); match != "" {
		return Reject(fmt.Sprintf("dangerous keyword %q detected, only SELECT queries are allowed",
			strings.ToUpper(match)))
	}

	return Allow()
}
