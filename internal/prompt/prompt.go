// Package prompt composes the instruction template and a bounded rendering
// of the staged changes into the request sent to the model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/0vg/GoodGit/internal/config"
	"github.com/0vg/GoodGit/internal/git"
)

const systemPrompt = `You are an AI assistant that writes git commit messages following the Conventional Commits specification.

Analyze the staged diff and respond with a single commit message.

Rules:
• The first line must match the format: type(scope): description. The scope is optional.
• The type must be one of: feat, fix, docs, style, refactor, perf, test, build, ci, chore, revert.
• The description must use the imperative mood, start with a lowercase letter, not end with a period, and be at most %d characters.
• An optional body may follow after exactly one blank line, explaining what changed and why.
• Declare breaking changes on their own line starting with "BREAKING CHANGE: ".
• Output only the commit message. No commentary, no markdown, no code fences, no alternative suggestions.

Examples:
feat(parser): add ability to parse nested JSON structures
fix: handle nil pointer in config loader`

// Payload is the complete, immutable model request. System is the constant
// instruction template, User the serialized change set.
type Payload struct {
	System string
	User   string
}

// Build serializes the staged changes into a Payload. The user content never
// exceeds the configured byte budget: whole file entries are appended until
// the next one would overflow, and a truncation notice marks anything
// dropped. Files are never split mid-entry. Pure, no I/O.
func Build(changes *git.StagedChanges, cfg config.Config, subject string) (Payload, error) {
	if changes == nil || changes.Empty() {
		return Payload{}, git.ErrNoStagedChanges
	}

	budget := cfg.MaxDiffBytes
	var b strings.Builder

	b.WriteString("Staged files:\n")
	writeBoundedSummary(&b, changes, budget/4)
	b.WriteString("\n")

	shown := 0
	for _, f := range changes.Files {
		entry := fileEntry(f)
		if b.Len()+len(entry) > budget {
			break
		}
		b.WriteString(entry)
		shown++
	}
	if shown < len(changes.Files) {
		fmt.Fprintf(&b, "\n[diff truncated: showing %d of %d files]\n", shown, len(changes.Files))
	}

	if subject != "" {
		fmt.Fprintf(&b, "\nFocus the commit message on: %s\n", subject)
	}

	return Payload{
		System: fmt.Sprintf(systemPrompt, cfg.MaxDescription),
		User:   b.String(),
	}, nil
}

// writeBoundedSummary writes the per-file status lines, stopping at whole
// lines once the limit is reached so a huge file list cannot blow the budget
// on its own.
func writeBoundedSummary(b *strings.Builder, changes *git.StagedChanges, limit int) {
	lines := strings.Split(strings.TrimRight(changes.Summary(), "\n"), "\n")
	for i, line := range lines {
		if b.Len()+len(line)+1 > limit {
			fmt.Fprintf(b, "... and %d more files\n", len(lines)-i)
			return
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func fileEntry(f git.StagedFile) string {
	if f.Kind == git.Renamed {
		return fmt.Sprintf("Diff for %s -> %s:\n%s\n", f.OldPath, f.Path, f.Diff)
	}
	return fmt.Sprintf("Diff for %s:\n%s\n", f.Path, f.Diff)
}
