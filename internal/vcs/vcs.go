// Package vcs defines the version-control collaborator contract consumed by
// the staged-diff mapper, and its git-backed implementation. The core never
// assembles VCS commands anywhere else.
package vcs

// StagedFile is one entry of the staging area listing. Status is the
// single-letter code (A, M, D, R, C, T); OldPath is set for renames and
// copies.
type StagedFile struct {
	Status  byte   `json:"status"`
	Path    string `json:"path"`
	OldPath string `json:"oldPath,omitempty"`
}

// Hunk is one staged change region in new-file coordinates. Pure-deletion
// hunks (NewLineCount 0) are excluded by the producer.
type Hunk struct {
	Path         string `json:"path"`
	NewStartLine int    `json:"newStartLine"`
	NewLineCount int    `json:"newLineCount"`
}

// Collaborator is the narrow interface the core calls. All paths are
// workspace-relative.
type Collaborator interface {
	// StagedFiles lists the staged entries. Not being a repository is an
	// empty list, not an error.
	StagedFiles() ([]StagedFile, error)
	// StagedContent returns the staged text of a path, or nil when the
	// staged blob cannot be read.
	StagedContent(path string) ([]byte, error)
	// StagedHunks lists staged change regions across all files.
	StagedHunks() ([]Hunk, error)
}
