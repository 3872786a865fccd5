// Package project owns the live symbol index and dependency graph. It
// restores them from the cache (or rebuilds), guards analyses with a
// monotone version counter, and dispatches the three root producers
// (staged, editor, intent) into the shared traversal engine.
package project

import (
	"context"

	"blastradius/internal/analyzer"
	"blastradius/internal/cache"
	"blastradius/internal/config"
	"blastradius/internal/engine"
	"blastradius/internal/graph"
	"blastradius/internal/intent"
	"blastradius/internal/logging"
	"blastradius/internal/parser"
	"blastradius/internal/staged"
	"blastradius/internal/symbols"
	"blastradius/internal/update"
	"blastradius/internal/vcs"
	"blastradius/internal/workspace"
)

// Project is the orchestrator. All core operations run on one logical
// task; only the live updater and full rebuild mutate the live maps.
type Project struct {
	cfg     *config.Config
	logger  *logging.Logger
	parser  *parser.Adapter
	index   *symbols.Index
	graph   *graph.Store
	updater *update.Updater
	cache   *cache.Cache
	oracle  intent.Oracle
	version uint64
}

// Open restores a project from its cache or rebuilds it from source,
// following the startup policy: any missing artifact, a changed project
// hash, a version bump, or an empty index forces a full rebuild; otherwise
// the cached state is adopted in place and stale files are patched with the
// two-pass scheme.
func Open(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Project, error) {
	p := &Project{
		cfg:    cfg,
		logger: logger,
		parser: parser.NewAdapter(logger),
		cache:  cache.New(cfg.CacheDir(), logger),
	}

	projectHash := cache.ProjectHash(cfg.ProjectConfigPath())
	meta := p.cache.LoadMetadata()
	cachedIndex := p.cache.LoadIndex()
	cachedGraph := p.cache.LoadGraph()
	storedHashes := p.cache.LoadHashes()

	fresh := meta == nil || cachedIndex == nil || cachedGraph == nil || storedHashes == nil ||
		meta.ProjectHash != projectHash || meta.Version != cache.Version || cachedIndex.Len() == 0
	if fresh {
		p.index = symbols.NewIndex()
		p.graph = graph.NewStore()
		p.updater = update.NewUpdater(p.parser, p.index, p.graph, cfg.Indexing.BatchYieldSize, logger)
		if err := p.Rebuild(ctx); err != nil {
			return nil, err
		}
		return p, p.Save()
	}

	// Adopt the cached state in place: the serialized reverse map makes a
	// re-walk unnecessary.
	p.index = cachedIndex
	p.graph = cachedGraph
	p.updater = update.NewUpdater(p.parser, p.index, p.graph, cfg.Indexing.BatchYieldSize, logger)

	if err := p.patchStaleFiles(ctx, storedHashes); err != nil {
		return nil, err
	}
	return p, p.Save()
}

// patchStaleFiles diffs current file hashes against the stored table,
// two-pass patches the stale set, and evicts files that vanished.
func (p *Project) patchStaleFiles(ctx context.Context, storedHashes map[string]string) error {
	current, err := workspace.Scan(p.cfg.ProjectRoot, p.cfg.Indexing.Extensions)
	if err != nil {
		return err
	}
	currentSet := make(map[string]struct{}, len(current))

	var stale []string
	for _, path := range current {
		currentSet[path] = struct{}{}
		h, err := cache.HashFile(path)
		if err != nil || h != storedHashes[path] {
			stale = append(stale, path)
		}
	}
	for path := range storedHashes {
		if _, ok := currentSet[path]; !ok {
			p.graph.EvictFile(path, p.index)
			p.parser.Drop(path)
		}
	}
	if len(stale) > 0 {
		p.logger.Info("patching stale files", map[string]interface{}{"count": len(stale)})
		p.updater.PatchStale(ctx, stale)
	}
	return nil
}

// Rebuild runs a full rebuild from the workspace scan
func (p *Project) Rebuild(ctx context.Context) error {
	files, err := workspace.Scan(p.cfg.ProjectRoot, p.cfg.Indexing.Extensions)
	if err != nil {
		return err
	}
	p.logger.Info("full rebuild", map[string]interface{}{"files": len(files)})
	return p.updater.FullRebuild(ctx, files)
}

// Save persists the index, the graph, the per-file hash table, and the
// project hash. Runs only after the in-memory state is consistent.
func (p *Project) Save() error {
	hashes := make(map[string]string)
	for path := range p.index.Files() {
		if h, err := cache.HashFile(path); err == nil {
			hashes[path] = h
		}
	}
	return p.cache.Save(p.index, p.graph, hashes, cache.ProjectHash(p.cfg.ProjectConfigPath()))
}

// Index exposes the live index read-only; speculative callers clone it
func (p *Project) Index() *symbols.Index { return p.index }

// Graph exposes the live graph read-only; speculative callers clone it
func (p *Project) Graph() *graph.Store { return p.graph }

// SetOracle injects the intent oracle. Tests install fakes here.
func (p *Project) SetOracle(o intent.Oracle) { p.oracle = o }

// nextVersion bumps the monotone analysis counter
func (p *Project) nextVersion() uint64 {
	p.version++
	return p.version
}

// stale reports whether another analysis started after v; a completed
// analysis with a stale counter discards its result
func (p *Project) stale(v uint64) bool {
	return p.version != v
}

// AnalyzeStaged maps the staging area onto impact roots and traverses the
// live graph. Returns nil when a newer analysis superseded this one.
func (p *Project) AnalyzeStaged(ctx context.Context) (*engine.Result, error) {
	v := p.nextVersion()
	mapper := staged.NewMapper(vcs.NewGit(p.cfg.ProjectRoot, p.logger), p.cfg, p.logger)
	result, err := mapper.Analyze(ctx, p.index, p.graph)
	if err != nil {
		return nil, err
	}
	if p.stale(v) {
		p.logger.Debug("discarding superseded staged analysis", nil)
		return nil, nil
	}
	return result, nil
}

// AnalyzeEditor handles an in-editor buffer change: it updates the live
// state for the file and reports the blast radius of any signature ripple
// or removal. Dependents of the file's symbols are snapshotted before the
// eviction and replayed as a transient reverse-edge overlay; the live graph
// is never touched by the traversal itself.
func (p *Project) AnalyzeEditor(ctx context.Context, path string, text []byte) (*engine.Result, *analyzer.Report, error) {
	v := p.nextVersion()
	norm := symbols.NormalizePath(path)

	overlay := engine.Overlay{}
	for _, s := range p.index.FileSymbols(norm) {
		if deps := p.graph.Dependents(s.ID); len(deps) > 0 {
			overlay[s.ID] = deps
		}
	}

	report := p.updater.HandleFileChanged(ctx, norm, text)

	var candidates []engine.Root
	for _, id := range report.Ripple {
		candidates = append(candidates, engine.Root{
			SymbolID: id, Mode: engine.Deep, Reason: engine.ReasonSignatureRipple,
		})
	}
	for _, id := range report.Removed {
		candidates = append(candidates, engine.Root{
			SymbolID: id, Mode: engine.Deep, Reason: engine.ReasonDeleted,
		})
	}

	result := engine.RunWithOverlay(engine.DedupeRoots(candidates), p.graph, overlay)
	if p.stale(v) {
		p.logger.Debug("discarding superseded editor analysis", nil)
		return nil, report, nil
	}
	return result, report, nil
}

// RemoveFile evicts a deleted file from the live state
func (p *Project) RemoveFile(path string) *analyzer.Report {
	p.nextVersion()
	return p.updater.HandleFileDeleted(path)
}

// AnalyzeIntent runs the what-if pipeline for a natural-language prompt
func (p *Project) AnalyzeIntent(ctx context.Context, prompt string) (*intent.Outcome, error) {
	if p.oracle == nil {
		oracle, err := intent.NewOpenAIOracle(p.cfg.Oracle, p.logger)
		if err != nil {
			return nil, err
		}
		p.oracle = oracle
	}
	pipeline := intent.NewPipeline(p.oracle, p.cfg, p.logger)
	return pipeline.Analyze(ctx, prompt, p.index, p.graph)
}

// ImpactOf seeds a traversal from a single symbol, for direct queries
func (p *Project) ImpactOf(symbolID string, deep bool) *engine.Result {
	mode := engine.Shallow
	reason := engine.ReasonBodyChange
	if deep {
		mode = engine.Deep
		reason = engine.ReasonSignatureRipple
	}
	return engine.Run([]engine.Root{{SymbolID: symbolID, Mode: mode, Reason: reason}}, p.graph)
}
