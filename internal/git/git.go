// Package git reads staged repository state and creates commits by shelling
// out to the git binary. It is the only package that touches the repository.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoStagedChanges is returned when the index holds nothing to commit.
var ErrNoStagedChanges = errors.New("no staged changes")

type ChangeKind string

const (
	Added    ChangeKind = "added"
	Modified ChangeKind = "modified"
	Deleted  ChangeKind = "deleted"
	Renamed  ChangeKind = "renamed"
)

// StagedFile is one staged entry with its unified diff text. OldPath is set
// only for renames.
type StagedFile struct {
	Path    string
	OldPath string
	Kind    ChangeKind
	Diff    string
}

// StagedChanges is the ordered snapshot of the index taken at collection
// time. It is never mutated after capture.
type StagedChanges struct {
	Files []StagedFile
}

func (s *StagedChanges) Empty() bool {
	return len(s.Files) == 0
}

// Summary renders one status line per file, with renames shown as
// "old -> new".
func (s *StagedChanges) Summary() string {
	var b strings.Builder
	for _, f := range s.Files {
		switch f.Kind {
		case Renamed:
			fmt.Fprintf(&b, "%-8s %s -> %s\n", f.Kind, f.OldPath, f.Path)
		default:
			fmt.Fprintf(&b, "%-8s %s\n", f.Kind, f.Path)
		}
	}
	return b.String()
}

// ReadStagedChanges captures the staged entries of the current repository
// with rename detection. Only the index is consulted; unstaged and untracked
// files never appear. Read-only, and deterministic for a fixed index.
func ReadStagedChanges() (*StagedChanges, error) {
	out, err := exec.Command("git", "diff", "--cached", "--name-status", "-M").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to read staged changes: %w", err)
	}

	files, err := parseNameStatus(string(out))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoStagedChanges
	}

	for i := range files {
		diff, err := stagedDiff(files[i])
		if err != nil {
			log.Warn().Err(err).Str("file", files[i].Path).Msg("Failed to get staged diff for file")
			continue
		}
		files[i].Diff = diff
	}

	return &StagedChanges{Files: files}, nil
}

// parseNameStatus parses `git diff --cached --name-status -M` output. Lines
// are tab-separated: a status letter (Rnnn carries a similarity score),
// then the path, then the rename target for R entries.
func parseNameStatus(out string) ([]StagedFile, error) {
	var files []StagedFile
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			return nil, fmt.Errorf("unexpected git name-status output: %q", line)
		}

		status := parts[0]
		switch {
		case strings.HasPrefix(status, "R"):
			if len(parts) < 3 {
				return nil, fmt.Errorf("rename entry missing target path: %q", line)
			}
			files = append(files, StagedFile{Path: parts[2], OldPath: parts[1], Kind: Renamed})
		case status == "A":
			files = append(files, StagedFile{Path: parts[1], Kind: Added})
		case status == "D":
			files = append(files, StagedFile{Path: parts[1], Kind: Deleted})
		case status == "M":
			files = append(files, StagedFile{Path: parts[1], Kind: Modified})
		default:
			// Copies and mode-only changes still commit as content changes.
			files = append(files, StagedFile{Path: parts[len(parts)-1], Kind: Modified})
		}
	}
	return files, nil
}

func stagedDiff(f StagedFile) (string, error) {
	args := []string{"--no-pager", "diff", "--cached", "-M", "--"}
	if f.OldPath != "" {
		args = append(args, f.OldPath)
	}
	args = append(args, f.Path)

	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CommitError carries the backend's refusal verbatim: hook rejection output,
// "nothing to commit" after a concurrent unstage, and so on.
type CommitError struct {
	Output string
	Err    error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("git commit failed: %v\nOutput: %s", e.Err, e.Output)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Commit creates a commit from the currently staged changes with the given
// message. This is the only operation in the package that mutates history.
func Commit(message string) error {
	cmd := exec.Command("git", "commit", "-m", message)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &CommitError{Output: string(output), Err: err}
	}
	return nil
}

// Push pushes the current branch to its upstream.
func Push() error {
	cmd := exec.Command("git", "push")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git push failed: %v\nOutput: %s", err, string(output))
	}
	return nil
}
