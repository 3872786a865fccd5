// Package update orchestrates snapshot → evict → reparse → reindex → rewalk
// for single files, the full rebuild, and the two-pass partial patch used
// after a cache restore.
package update

import (
	"context"
	"runtime"

	"blastradius/internal/analyzer"
	"blastradius/internal/graph"
	"blastradius/internal/logging"
	"blastradius/internal/parser"
	"blastradius/internal/symbols"
	"blastradius/internal/walker"
)

// Updater owns one index/graph pair. The orchestrator holds an updater over
// the live state; speculative analyses build one over shadow clones.
type Updater struct {
	parser *parser.Adapter
	index  *symbols.Index
	graph  *graph.Store
	batch  int
	logger *logging.Logger
}

// NewUpdater creates an updater over the given index and graph
func NewUpdater(p *parser.Adapter, index *symbols.Index, g *graph.Store, batchYieldSize int, logger *logging.Logger) *Updater {
	if batchYieldSize <= 0 {
		batchYieldSize = 20
	}
	return &Updater{parser: p, index: index, graph: g, batch: batchYieldSize, logger: logger}
}

// Index returns the index the updater mutates
func (u *Updater) Index() *symbols.Index { return u.index }

// Graph returns the graph the updater mutates
func (u *Updater) Graph() *graph.Store { return u.graph }

// HandleFileChanged re-indexes a single file with newText overriding the
// disk. The snapshot-evict-reparse-reindex-rewalk sequence runs without a
// cooperative yield in between. When the re-parse fails the file stays
// evicted and the report's Removed set equals the snapshot's keys.
func (u *Updater) HandleFileChanged(ctx context.Context, path string, newText []byte) *analyzer.Report {
	norm := symbols.NormalizePath(path)
	snapshot := u.index.Snapshot(norm)
	u.graph.EvictFile(norm, u.index)

	var f *parser.File
	var err error
	if newText != nil {
		f, err = u.parser.ParseSource(ctx, norm, newText)
	} else {
		f, err = u.parser.ParseFile(ctx, norm)
	}
	if err != nil {
		u.parser.Drop(norm)
		u.logger.Warn("reparse failed, file stays evicted", map[string]interface{}{
			"path": norm, "error": err.Error(),
		})
		return analyzer.RemovedOnly(snapshot)
	}

	for _, s := range symbols.Extract(f) {
		u.index.Put(s)
	}
	walker.Walk(f, u.index, u.graph)

	return analyzer.DiffSignatures(snapshot, u.index, norm)
}

// HandleFileCreated indexes a brand-new file
func (u *Updater) HandleFileCreated(ctx context.Context, path string, newText []byte) *analyzer.Report {
	return u.HandleFileChanged(ctx, path, newText)
}

// HandleFileDeleted evicts a file; the report's Removed set lists its former
// symbols
func (u *Updater) HandleFileDeleted(path string) *analyzer.Report {
	norm := symbols.NormalizePath(path)
	snapshot := u.index.Snapshot(norm)
	u.graph.EvictFile(norm, u.index)
	u.parser.Drop(norm)
	return analyzer.RemovedOnly(snapshot)
}

// FullRebuild clears the graph and index in place (shared references stay
// valid), reparses every file from disk, re-extracts all symbols, then
// re-walks all references. Per-file parse errors are swallowed; the file is
// simply absent. Yields cooperatively every batchYieldSize files.
func (u *Updater) FullRebuild(ctx context.Context, files []string) error {
	u.graph.Clear()
	u.index.Clear()

	var parsed []*parser.File
	for i, path := range files {
		f, err := u.parser.ParseFile(ctx, path)
		if err != nil {
			u.logger.Warn("skipping unparseable file", map[string]interface{}{
				"path": path, "error": err.Error(),
			})
			continue
		}
		for _, s := range symbols.Extract(f) {
			u.index.Put(s)
		}
		parsed = append(parsed, f)
		if err := u.maybeYield(ctx, i); err != nil {
			return err
		}
	}

	for i, f := range parsed {
		walker.Walk(f, u.index, u.graph)
		if err := u.maybeYield(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// PatchStale applies the two-pass partial patch: every eviction and
// re-extraction completes before any re-walk, so no edge into a stale file
// is recorded against its old symbols and then erased. Files that fail to
// parse stay evicted.
func (u *Updater) PatchStale(ctx context.Context, stale []string) map[string]*analyzer.Report {
	reports := make(map[string]*analyzer.Report, len(stale))
	var parsed []*parser.File

	// Pass 1: evict and re-extract everything.
	snapshots := make(map[string]map[string]string, len(stale))
	for i, path := range stale {
		norm := symbols.NormalizePath(path)
		snapshots[norm] = u.index.Snapshot(norm)
		u.graph.EvictFile(norm, u.index)

		f, err := u.parser.ParseFile(ctx, norm)
		if err != nil {
			u.parser.Drop(norm)
			reports[norm] = analyzer.RemovedOnly(snapshots[norm])
			continue
		}
		for _, s := range symbols.Extract(f) {
			u.index.Put(s)
		}
		parsed = append(parsed, f)
		if err := u.maybeYield(ctx, i); err != nil {
			return reports
		}
	}

	// Pass 2: re-walk only after every index mutation has landed.
	for i, f := range parsed {
		walker.Walk(f, u.index, u.graph)
		reports[f.Path] = analyzer.DiffSignatures(snapshots[f.Path], u.index, f.Path)
		if err := u.maybeYield(ctx, i); err != nil {
			return reports
		}
	}
	return reports
}

// maybeYield hands the scheduler off at batch boundaries so a single-event-
// loop host stays responsive, and observes cancellation.
func (u *Updater) maybeYield(ctx context.Context, i int) error {
	if (i+1)%u.batch != 0 {
		return nil
	}
	runtime.Gosched()
	return ctx.Err()
}
