package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNameStatus(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    []StagedFile
		wantErr bool
	}{
		{
			name: "empty output",
			out:  "",
			want: nil,
		},
		{
			name: "added modified deleted",
			out:  "A\tcmd/new.go\nM\tinternal/old.go\nD\tREADME.md\n",
			want: []StagedFile{
				{Path: "cmd/new.go", Kind: Added},
				{Path: "internal/old.go", Kind: Modified},
				{Path: "README.md", Kind: Deleted},
			},
		},
		{
			name: "rename with similarity score",
			out:  "R100\tsettings.json\tconfig/settings.json\n",
			want: []StagedFile{
				{Path: "config/settings.json", OldPath: "settings.json", Kind: Renamed},
			},
		},
		{
			name: "path with spaces",
			out:  "M\tdocs/release notes.md\n",
			want: []StagedFile{
				{Path: "docs/release notes.md", Kind: Modified},
			},
		},
		{
			name: "copy falls back to modified",
			out:  "C75\ta.go\tb.go\n",
			want: []StagedFile{
				{Path: "b.go", Kind: Modified},
			},
		},
		{
			name:    "rename missing target",
			out:     "R100\tonly-one-path\n",
			wantErr: true,
		},
		{
			name:    "garbage line",
			out:     "not-a-status-line\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNameStatus(tt.out)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummaryRendersRenames(t *testing.T) {
	changes := &StagedChanges{Files: []StagedFile{
		{Path: "config/settings.json", OldPath: "settings.json", Kind: Renamed},
		{Path: "main.go", Kind: Modified},
	}}

	summary := changes.Summary()
	assert.Contains(t, summary, "settings.json -> config/settings.json")
	assert.Contains(t, summary, "modified")
	assert.Contains(t, summary, "main.go")
}

func TestCommitErrorUnwraps(t *testing.T) {
	inner := assert.AnError
	err := &CommitError{Output: "hook said no", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "hook said no")
}
