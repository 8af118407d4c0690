// Package commit defines the validated Conventional Commit message and the
// parser that turns untrusted model output into one. Parse is the only
// constructor, so nothing unvalidated can reach the repository.
package commit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/0vg/GoodGit/internal/llm"
)

type Type string

const (
	TypeFeat     Type = "feat"
	TypeFix      Type = "fix"
	TypeDocs     Type = "docs"
	TypeStyle    Type = "style"
	TypeRefactor Type = "refactor"
	TypePerf     Type = "perf"
	TypeTest     Type = "test"
	TypeBuild    Type = "build"
	TypeCI       Type = "ci"
	TypeChore    Type = "chore"
	TypeRevert   Type = "revert"
)

var canonicalTypes = map[Type]bool{
	TypeFeat:     true,
	TypeFix:      true,
	TypeDocs:     true,
	TypeStyle:    true,
	TypeRefactor: true,
	TypePerf:     true,
	TypeTest:     true,
	TypeBuild:    true,
	TypeCI:       true,
	TypeChore:    true,
	TypeRevert:   true,
}

// synonyms folds aliases models actually emit onto the canonical vocabulary.
// Anything not listed here and not canonical fails closed.
var synonyms = map[string]Type{
	"bug":           TypeFix,
	"bugfix":        TypeFix,
	"hotfix":        TypeFix,
	"feature":       TypeFeat,
	"doc":           TypeDocs,
	"documentation": TypeDocs,
	"performance":   TypePerf,
	"tests":         TypeTest,
	"testing":       TypeTest,
	"chores":        TypeChore,
	"cleanup":       TypeChore,
	"rename":        TypeRefactor,
	"remove":        TypeChore,
}

// InvalidFormatError carries the offending raw text so the user can retry
// generation or write the message by hand.
type InvalidFormatError struct {
	Raw    string
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid commit message format: %s", e.Reason)
}

// Message is a validated Conventional Commit. Fields are unexported on
// purpose: outside this package a Message can only come from Parse, and the
// repository only ever sees String().
type Message struct {
	typ         Type
	scope       string
	description string
	body        string
	breaking    string
}

func (m *Message) Type() Type             { return m.typ }
func (m *Message) Scope() string          { return m.scope }
func (m *Message) Description() string    { return m.description }
func (m *Message) Body() string           { return m.body }
func (m *Message) BreakingChange() string { return m.breaking }

// Subject is the canonical header line.
func (m *Message) Subject() string {
	if m.scope != "" {
		return fmt.Sprintf("%s(%s): %s", m.typ, m.scope, m.description)
	}
	return fmt.Sprintf("%s: %s", m.typ, m.description)
}

// String is the canonical serialization: header, optional body after one
// blank line, optional BREAKING CHANGE footer after another. This rendering,
// never the model's, is what gets displayed and committed.
func (m *Message) String() string {
	var b strings.Builder
	b.WriteString(m.Subject())
	if m.body != "" {
		b.WriteString("\n\n")
		b.WriteString(m.body)
	}
	if m.breaking != "" {
		b.WriteString("\n\nBREAKING CHANGE: ")
		b.WriteString(m.breaking)
	}
	return b.String()
}

// Parse validates and normalizes raw model output into a Message. Repairable
// deviations (code fences, casing, alias types, a trailing period) are
// normalized; anything else fails with InvalidFormatError.
func Parse(raw llm.RawMessage, maxDescription int) (*Message, error) {
	text := stripWrapping(raw.Text)
	if text == "" {
		return nil, &InvalidFormatError{Raw: raw.Text, Reason: "empty response"}
	}

	lines := strings.Split(text, "\n")
	header := strings.TrimSpace(lines[0])

	typ, scope, description, err := parseHeader(header)
	if err != nil {
		return nil, &InvalidFormatError{Raw: raw.Text, Reason: err.Error()}
	}

	description, err = normalizeDescription(description, maxDescription)
	if err != nil {
		return nil, &InvalidFormatError{Raw: raw.Text, Reason: err.Error()}
	}

	body, breaking, err := parseBody(lines)
	if err != nil {
		return nil, &InvalidFormatError{Raw: raw.Text, Reason: err.Error()}
	}

	return &Message{
		typ:         typ,
		scope:       scope,
		description: description,
		body:        body,
		breaking:    breaking,
	}, nil
}

// stripWrapping removes the cosmetic noise models wrap answers in: code
// fences, stray backticks, surrounding quotes on single-line output.
func stripWrapping(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && !strings.Contains(s, "\n") {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// parseHeader splits `type(scope)?: description`. Only the first colon after
// the optional scope parenthetical delimits the description, so colons inside
// the description survive.
func parseHeader(header string) (Type, string, string, error) {
	if header == "" {
		return "", "", "", fmt.Errorf("missing header line")
	}

	var token, scope, description string
	open := strings.Index(header, "(")
	colon := strings.Index(header, ":")
	if colon == -1 {
		return "", "", "", fmt.Errorf("header %q has no colon separating type from description", header)
	}

	if open >= 0 && open < colon {
		closing := strings.Index(header, ")")
		if closing < open {
			return "", "", "", fmt.Errorf("header %q has an unterminated scope", header)
		}
		token = header[:open]
		scope = strings.TrimSpace(header[open+1 : closing])
		rest := strings.TrimPrefix(header[closing+1:], "!")
		if !strings.HasPrefix(rest, ":") {
			return "", "", "", fmt.Errorf("header %q is missing the colon after the scope", header)
		}
		description = strings.TrimSpace(rest[1:])
	} else {
		token = strings.TrimSuffix(header[:colon], "!")
		description = strings.TrimSpace(header[colon+1:])
	}

	typ, err := normalizeType(token)
	if err != nil {
		return "", "", "", err
	}
	return typ, scope, description, nil
}

// normalizeType case-folds the token and consults the synonym table. The
// default branch fails closed: an unmappable type is never guessed.
func normalizeType(token string) (Type, error) {
	folded := strings.ToLower(strings.TrimSpace(token))
	if strings.ContainsAny(folded, " \t") {
		return "", fmt.Errorf("type %q contains whitespace", token)
	}
	if canonicalTypes[Type(folded)] {
		return Type(folded), nil
	}
	if mapped, ok := synonyms[folded]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("unrecognized commit type %q", token)
}

func normalizeDescription(description string, max int) (string, error) {
	if description == "" {
		return "", fmt.Errorf("empty description")
	}

	r := []rune(description)
	if len(r) >= 2 && unicode.IsUpper(r[0]) && isSentencePunct(r[1]) {
		return "", fmt.Errorf("malformed description %q", description)
	}
	// Fold a capitalized first word; acronyms keep their casing.
	if len(r) >= 2 && unicode.IsUpper(r[0]) && unicode.IsLower(r[1]) {
		r[0] = unicode.ToLower(r[0])
	}
	description = strings.TrimSuffix(string(r), ".")

	if len(description) > max {
		cut := strings.LastIndex(description[:max+1], " ")
		if cut < max/2 {
			return "", fmt.Errorf("description exceeds %d characters and cannot be truncated at a word boundary", max)
		}
		description = strings.TrimRight(description[:cut], " ,;:.")
	}
	if description == "" {
		return "", fmt.Errorf("empty description")
	}
	return description, nil
}

func isSentencePunct(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// parseBody handles everything below the header: exactly one blank line
// before the body, extraction of the BREAKING CHANGE footer, and rejection
// of a second candidate message.
func parseBody(lines []string) (string, string, error) {
	if len(lines) == 1 {
		return "", "", nil
	}
	if strings.TrimSpace(lines[1]) != "" {
		return "", "", fmt.Errorf("body must be separated from the header by exactly one blank line")
	}
	if len(lines) == 2 {
		return "", "", nil
	}
	if strings.TrimSpace(lines[2]) == "" {
		return "", "", fmt.Errorf("body must be separated from the header by exactly one blank line")
	}

	var breaking string
	var bodyLines []string
	blankBefore := true
	for _, line := range lines[2:] {
		trimmed := strings.TrimSpace(line)
		if blankBefore && looksLikeHeader(trimmed) {
			return "", "", fmt.Errorf("response contains more than one candidate message")
		}
		if rest, ok := breakingFooter(trimmed); ok {
			breaking = rest
			blankBefore = trimmed == ""
			continue
		}
		bodyLines = append(bodyLines, line)
		blankBefore = trimmed == ""
	}

	body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
	return body, breaking, nil
}

func breakingFooter(line string) (string, bool) {
	for _, prefix := range []string{"BREAKING CHANGE:", "BREAKING-CHANGE:"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

// looksLikeHeader reports whether a paragraph-leading line parses as another
// commit header. Alternatives must be rejected, never silently picked from.
func looksLikeHeader(line string) bool {
	typ, _, description, err := parseHeader(line)
	return err == nil && typ != "" && description != ""
}
