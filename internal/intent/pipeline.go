package intent

import (
	"context"

	"blastradius/internal/config"
	"blastradius/internal/engine"
	"blastradius/internal/graph"
	"blastradius/internal/logging"
	"blastradius/internal/symbols"
)

// Outcome is the result of a what-if analysis. When Relevant is false the
// prompt matched nothing in the codebase and no traversal ran.
type Outcome struct {
	Descriptor  *Descriptor           `json:"descriptor"`
	Relevant    bool                  `json:"relevant"`
	Resolved    []Resolved            `json:"resolved"`
	Phantoms    []string              `json:"phantoms,omitempty"`
	Result      *engine.Result        `json:"result"`
	Confidences map[string]Confidence `json:"confidences"`
}

// Pipeline wires the oracle, the resolver, and the engine
type Pipeline struct {
	oracle   Oracle
	resolver *Resolver
	cfg      *config.Config
	logger   *logging.Logger
}

// NewPipeline creates an intent pipeline
func NewPipeline(oracle Oracle, cfg *config.Config, logger *logging.Logger) *Pipeline {
	return &Pipeline{
		oracle:   oracle,
		resolver: NewResolver(cfg.Resolver, cfg.ProjectRoot),
		cfg:      cfg,
		logger:   logger,
	}
}

// Analyze runs prompt → descriptor → resolution → virtual diff → traversal.
// The traversal runs against the live graph: the question is who currently
// depends on the symbols the intent touches. Shadow copies exist only so
// speculative mutations (deletions, phantoms) never reach live state.
func (p *Pipeline) Analyze(ctx context.Context, prompt string, index *symbols.Index, liveGraph *graph.Store) (*Outcome, error) {
	grounding := BuildGrounding(index, p.cfg.ProjectRoot,
		p.cfg.Oracle.MaxContextFiles, p.cfg.Oracle.MaxContextSymbols)

	desc, err := p.oracle.Describe(ctx, prompt, grounding)
	if err != nil {
		return nil, err
	}

	resolved, relevant := p.resolver.Resolve(index, desc)
	if !relevant {
		p.logger.Info("prompt is foreign to the codebase", map[string]interface{}{
			"prompt": prompt,
		})
		return &Outcome{
			Descriptor:  desc,
			Relevant:    false,
			Result:      engine.Run(nil, liveGraph),
			Confidences: map[string]Confidence{},
		}, nil
	}

	shadowIndex := index.Clone()

	rootConfidence := make(map[string]Confidence, len(resolved))
	var candidates []engine.Root
	for _, r := range resolved {
		rootConfidence[r.SymbolID] = r.Confidence
		switch {
		case desc.ChangeType == ChangeDelete:
			// Reverse edges stay in place so the traversal can still find
			// dependents of the symbol being removed.
			shadowIndex.Remove(r.SymbolID)
			candidates = append(candidates, engine.Root{
				SymbolID: r.SymbolID, Mode: engine.Deep, Reason: engine.ReasonDeleted,
			})
		case desc.AffectsPublicAPI:
			candidates = append(candidates, engine.Root{
				SymbolID: r.SymbolID, Mode: engine.Deep, Reason: engine.ReasonSignatureRipple,
			})
		default:
			candidates = append(candidates, engine.Root{
				SymbolID: r.SymbolID, Mode: engine.Shallow, Reason: engine.ReasonBodyChange,
			})
		}
	}

	var phantoms []string
	if desc.ChangeType == ChangeAdd {
		phantoms = p.insertPhantoms(shadowIndex, desc, resolved, index)
	}

	roots := engine.DedupeRoots(candidates)
	result := engine.Run(roots, liveGraph)

	confidences := degradeConfidence(result, rootConfidence)

	if desc.ChangeType == ChangeDelete {
		filterIntraFileDependents(result, confidences, index, roots)
	}

	return &Outcome{
		Descriptor:  desc,
		Relevant:    true,
		Resolved:    resolved,
		Phantoms:    phantoms,
		Result:      result,
		Confidences: confidences,
	}, nil
}

// insertPhantoms adds a display-only placeholder for every symbol hint that
// resolved to nothing. Phantoms carry no edges and never seed a traversal.
func (p *Pipeline) insertPhantoms(shadowIndex *symbols.Index, desc *Descriptor, resolved []Resolved, index *symbols.Index) []string {
	matched := make(map[string]struct{})
	for _, r := range resolved {
		if s := index.Get(r.SymbolID); s != nil {
			matched[s.Name] = struct{}{}
			matched[s.QualifiedName] = struct{}{}
		}
	}

	var phantoms []string
	for _, hint := range desc.SymbolHints {
		if _, ok := matched[hint]; ok {
			continue
		}
		id := symbols.PhantomPrefix + hint
		shadowIndex.Put(&symbols.Symbol{
			ID:            id,
			Name:          hint,
			QualifiedName: hint,
			Kind:          symbols.KindFunction,
		})
		phantoms = append(phantoms, id)
	}
	return phantoms
}

// degradeConfidence maps each impacted symbol to its effective confidence:
// the root's resolver confidence for one-hop paths, one tier lower for
// anything deeper, maximized across all of the symbol's paths.
func degradeConfidence(result *engine.Result, rootConfidence map[string]Confidence) map[string]Confidence {
	out := make(map[string]Confidence)
	for id, paths := range result.Paths {
		best := Confidence("")
		bestRank := -1
		for _, path := range paths {
			if len(path) == 0 {
				continue
			}
			conf, ok := rootConfidence[path[0]]
			if !ok {
				conf = ConfidenceLow
			}
			if len(path)-1 >= 2 {
				conf = Demote(conf)
			}
			if r := confidenceRank(conf); r > bestRank {
				bestRank = r
				best = conf
			}
		}
		if bestRank >= 0 {
			out[id] = best
		}
	}
	return out
}

// filterIntraFileDependents strips impacted symbols that share a file with
// any root: intra-file references to a deleted symbol are themselves being
// deleted.
func filterIntraFileDependents(result *engine.Result, confidences map[string]Confidence, index *symbols.Index, roots []engine.Root) {
	rootFiles := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		if s := index.Get(r.SymbolID); s != nil {
			rootFiles[s.FilePath] = struct{}{}
		} else {
			file, _ := symbols.SplitID(r.SymbolID)
			rootFiles[file] = struct{}{}
		}
	}

	strip := func(id string) bool {
		file, _ := symbols.SplitID(id)
		if s := index.Get(id); s != nil {
			file = s.FilePath
		}
		_, ok := rootFiles[file]
		return ok
	}

	keep := func(ids []string) []string {
		out := ids[:0]
		for _, id := range ids {
			if !strip(id) {
				out = append(out, id)
			}
		}
		return out
	}
	result.DirectImpact = keep(result.DirectImpact)
	result.IndirectImpact = keep(result.IndirectImpact)
	for id := range result.DepthMap {
		if strip(id) {
			delete(result.DepthMap, id)
			delete(result.Paths, id)
			delete(confidences, id)
		}
	}
}
