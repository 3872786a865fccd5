package vcs

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/sourcegraph/go-diff/diff"

	"blastradius/internal/logging"
)

// DefaultTimeout bounds every git invocation
const DefaultTimeout = 5 * time.Second

// Git is the git-backed collaborator
type Git struct {
	repoRoot string
	timeout  time.Duration
	logger   *logging.Logger
}

// NewGit creates a git collaborator rooted at repoRoot
func NewGit(repoRoot string, logger *logging.Logger) *Git {
	return &Git{repoRoot: repoRoot, timeout: DefaultTimeout, logger: logger}
}

// StagedFiles lists staged entries via name-status output with rename and
// copy detection. A missing tool or repository yields an empty set.
func (g *Git) StagedFiles() ([]StagedFile, error) {
	out, err := g.run("diff", "--cached", "--name-status", "-M", "-C")
	if err != nil {
		g.logger.Debug("no staged output, treating as empty", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}

	var files []StagedFile
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		status := fields[0][0]
		sf := StagedFile{Status: status, Path: fields[1]}
		if (status == 'R' || status == 'C') && len(fields) >= 3 {
			sf.OldPath = fields[1]
			sf.Path = fields[2]
		}
		files = append(files, sf)
	}
	return files, nil
}

// StagedContent reads the staged blob of a path
func (g *Git) StagedContent(path string) ([]byte, error) {
	out, err := g.run("show", ":0:"+path)
	if err != nil {
		return nil, nil
	}
	return []byte(out), nil
}

// StagedHunks parses `git diff --cached -U0` and emits one Hunk per staged
// change region, skipping pure deletions.
func (g *Git) StagedHunks() ([]Hunk, error) {
	out, err := g.run("diff", "--cached", "-U0")
	if err != nil || out == "" {
		return nil, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(out))
	if err != nil {
		g.logger.Warn("unparseable staged diff", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}

	var hunks []Hunk
	for _, fd := range fileDiffs {
		path := strings.TrimPrefix(fd.NewName, "b/")
		if path == "/dev/null" {
			continue
		}
		for _, h := range fd.Hunks {
			if h.NewLines == 0 {
				continue
			}
			hunks = append(hunks, Hunk{
				Path:         path,
				NewStartLine: int(h.NewStartLine),
				NewLineCount: int(h.NewLines),
			})
		}
	}
	return hunks, nil
}

func (g *Git) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
