// Package staged maps the VCS staging area onto impact roots. All
// speculative work happens on shadow copies of the index and graph; the
// blast radius itself is computed against the live graph, which still knows
// who depends on symbols the staged changes delete.
package staged

import (
	"context"
	"path"
	"strings"

	"blastradius/internal/analyzer"
	"blastradius/internal/config"
	"blastradius/internal/engine"
	"blastradius/internal/graph"
	"blastradius/internal/logging"
	"blastradius/internal/parser"
	"blastradius/internal/symbols"
	"blastradius/internal/update"
	"blastradius/internal/vcs"
)

// Mapper turns staged files and hunks into impact roots
type Mapper struct {
	vcs    vcs.Collaborator
	cfg    *config.Config
	logger *logging.Logger
}

// NewMapper creates a staged-diff mapper
func NewMapper(v vcs.Collaborator, cfg *config.Config, logger *logging.Logger) *Mapper {
	return &Mapper{vcs: v, cfg: cfg, logger: logger}
}

// Analyze runs the staged changes against shadow copies and traverses the
// live graph from the resulting roots. An empty staging area yields an
// empty result.
func (m *Mapper) Analyze(ctx context.Context, liveIndex *symbols.Index, liveGraph *graph.Store) (*engine.Result, error) {
	files, err := m.vcs.StagedFiles()
	if err != nil {
		return nil, err
	}

	shadowIndex := liveIndex.Clone()
	shadowGraph := liveGraph.Clone()
	shadowParser := parser.NewAdapter(m.logger)
	updater := update.NewUpdater(shadowParser, shadowIndex, shadowGraph, m.cfg.Indexing.BatchYieldSize, m.logger)

	var candidates []engine.Root
	var renameDestinations []string
	stagedTexts := make(map[string][]byte)

	for _, sf := range files {
		if !m.isSource(sf.Path) {
			continue
		}
		abs := m.absPath(sf.Path)

		switch sf.Status {
		case 'D':
			updater.HandleFileDeleted(abs)
		case 'R', 'C':
			if sf.OldPath != "" {
				updater.HandleFileDeleted(m.absPath(sf.OldPath))
			}
			text, ok := m.stagedText(sf.Path, stagedTexts)
			if !ok {
				continue
			}
			updater.HandleFileCreated(ctx, abs, text)
			renameDestinations = append(renameDestinations, abs)
		default: // A, M, T
			text, ok := m.stagedText(sf.Path, stagedTexts)
			if !ok {
				continue
			}
			report := updater.HandleFileChanged(ctx, abs, text)
			for _, id := range report.Ripple {
				candidates = append(candidates, engine.Root{
					SymbolID: id, Mode: engine.Deep, Reason: engine.ReasonSignatureRipple,
				})
			}
		}
	}

	// Ghost sweep: live-graph keys the staged index no longer declares are
	// symbols deleted or renamed away.
	for _, ghost := range analyzer.Ghosts(liveGraph, shadowIndex) {
		candidates = append(candidates, engine.Root{
			SymbolID: ghost, Mode: engine.Deep, Reason: engine.ReasonDeleted,
		})
	}

	for _, dest := range renameDestinations {
		for _, s := range shadowIndex.FileSymbols(dest) {
			candidates = append(candidates, engine.Root{
				SymbolID: s.ID, Mode: engine.Deep, Reason: engine.ReasonRenamed,
			})
		}
	}

	hunkRoots, err := m.hunkCandidates(shadowIndex, stagedTexts)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, hunkRoots...)

	roots := engine.DedupeRoots(candidates)
	return engine.Run(roots, liveGraph), nil
}

// hunkCandidates maps staged hunks to the symbols they overlap. Every
// overlapped symbol enters the flat candidate list as a shallow body
// change; deduplication promotes the ones that also rippled.
func (m *Mapper) hunkCandidates(shadowIndex *symbols.Index, stagedTexts map[string][]byte) ([]engine.Root, error) {
	hunks, err := m.vcs.StagedHunks()
	if err != nil {
		return nil, err
	}

	var out []engine.Root
	for _, h := range hunks {
		if !m.isSource(h.Path) {
			continue
		}
		text, ok := m.stagedText(h.Path, stagedTexts)
		if !ok {
			continue
		}
		startPos, endPos := lineRangeToCharRange(text, h.NewStartLine, h.NewStartLine+h.NewLineCount-1)
		for _, s := range shadowIndex.FileSymbols(m.absPath(h.Path)) {
			if s.StartPos <= endPos && s.EndPos >= startPos {
				out = append(out, engine.Root{
					SymbolID: s.ID, Mode: engine.Shallow, Reason: engine.ReasonBodyChange,
				})
			}
		}
	}
	return out, nil
}

// stagedText reads a file's staged content once, caching it for the hunk
// pass. Empty reads are skipped with a log; the file may have changed
// between enumeration and read.
func (m *Mapper) stagedText(relPath string, cacheMap map[string][]byte) ([]byte, bool) {
	if text, ok := cacheMap[relPath]; ok {
		return text, len(text) > 0
	}
	text, err := m.vcs.StagedContent(relPath)
	if err != nil || len(text) == 0 {
		m.logger.Warn("empty staged content, skipping file", map[string]interface{}{
			"path": relPath,
		})
		cacheMap[relPath] = nil
		return nil, false
	}
	cacheMap[relPath] = text
	return text, true
}

func (m *Mapper) isSource(relPath string) bool {
	for _, ext := range m.cfg.Indexing.Extensions {
		if strings.HasSuffix(relPath, ext) {
			return true
		}
	}
	return false
}

func (m *Mapper) absPath(relPath string) string {
	return symbols.NormalizePath(path.Join(symbols.NormalizePath(m.cfg.ProjectRoot), relPath))
}

// lineRangeToCharRange converts a 1-based inclusive line range to absolute
// character offsets via a newline scan. Line numbers clamp to the file's
// line count; the end offset is the last character of the end line, newline
// excluded.
func lineRangeToCharRange(text []byte, startLine, endLine int) (int, int) {
	lineStarts := []int{0}
	for i, b := range text {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	lineCount := len(lineStarts)
	clamp := func(n int) int {
		if n < 1 {
			return 1
		}
		if n > lineCount {
			return lineCount
		}
		return n
	}
	startLine = clamp(startLine)
	endLine = clamp(endLine)

	startPos := lineStarts[startLine-1]
	var endPos int
	if endLine < lineCount {
		endPos = lineStarts[endLine] - 2 // before the newline
	} else {
		endPos = len(text) - 1
	}
	if endPos < startPos {
		endPos = startPos
	}
	return startPos, endPos
}
