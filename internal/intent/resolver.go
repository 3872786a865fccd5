package intent

import (
	"sort"
	"strings"

	"blastradius/internal/config"
	"blastradius/internal/symbols"
)

// Confidence bands a resolver score
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Resolved is one live symbol matched to the intent
type Resolved struct {
	SymbolID   string     `json:"symbolId"`
	Score      float64    `json:"score"`
	Confidence Confidence `json:"confidence"`
}

// Resolver matches oracle hints and prompt keywords against the index
type Resolver struct {
	cfg         config.ResolverConfig
	projectRoot string
}

// NewResolver creates a resolver with the configured thresholds
func NewResolver(cfg config.ResolverConfig, projectRoot string) *Resolver {
	return &Resolver{cfg: cfg, projectRoot: projectRoot}
}

// Resolve runs both passes. Pass A (hint matching) is precision; Pass B
// (prompt keywords) is recall and doubles as the relevance gate. When
// neither passes, the prompt is foreign to the codebase.
func (r *Resolver) Resolve(index *symbols.Index, desc *Descriptor) (resolved []Resolved, relevant bool) {
	passA := r.hintPass(index, desc)
	passB, bestB := r.keywordPass(index, desc.Prompt)

	relevant = len(passA) > 0 || bestB >= r.cfg.RelevanceThreshold
	if !relevant {
		return nil, false
	}

	if len(passA) > 0 {
		if len(passA) > r.cfg.MaxResolvedHints {
			passA = passA[:r.cfg.MaxResolvedHints]
		}
		return passA, true
	}
	if len(passB) > r.cfg.MaxResolvedKeywords {
		passB = passB[:r.cfg.MaxResolvedKeywords]
	}
	return passB, true
}

// hintPass scores every indexed symbol against the oracle's hints
func (r *Resolver) hintPass(index *symbols.Index, desc *Descriptor) []Resolved {
	if len(desc.SymbolHints) == 0 && len(desc.FileHints) == 0 {
		return nil
	}

	var out []Resolved
	index.Each(func(s *symbols.Symbol) {
		symScore := 0.0
		for _, hint := range desc.SymbolHints {
			if sc := nameScore(s.QualifiedName, hint); sc > symScore {
				symScore = sc
			}
			if sc := nameScore(s.Name, hint); sc > symScore {
				symScore = sc
			}
		}
		fileScore := 0.0
		rel := relativePath(r.projectRoot, s.FilePath)
		for _, hint := range desc.FileHints {
			if sc := pathScore(rel, hint); sc > fileScore {
				fileScore = sc
			}
		}

		var combined float64
		switch {
		case len(desc.SymbolHints) > 0 && len(desc.FileHints) > 0:
			combined = 0.7*symScore + 0.3*fileScore
		case len(desc.SymbolHints) > 0:
			combined = symScore
		default:
			combined = fileScore
		}
		combined = exportedBonus(combined, s.Exported)

		if combined >= r.cfg.HintAcceptScore {
			out = append(out, Resolved{
				SymbolID:   s.ID,
				Score:      combined,
				Confidence: r.band(combined),
			})
		}
	})
	sortResolved(out)
	return out
}

// keywordPass scores prompt keywords against each symbol's name tokens and
// returns the best score seen for the relevance gate
func (r *Resolver) keywordPass(index *symbols.Index, prompt string) ([]Resolved, float64) {
	keywords := promptKeywords(prompt)
	if len(keywords) == 0 {
		return nil, 0
	}

	var out []Resolved
	best := 0.0
	index.Each(func(s *symbols.Symbol) {
		tokens := tokenize(s.QualifiedName)
		sum := 0.0
		for _, kw := range keywords {
			sum += keywordScore(kw, tokens)
		}
		score := sum / float64(len(keywords))
		if score > 1 {
			score = 1
		}
		score = exportedBonus(score, s.Exported)
		if score > best {
			best = score
		}
		if score >= r.cfg.KeywordAcceptScore {
			out = append(out, Resolved{
				SymbolID:   s.ID,
				Score:      score,
				Confidence: r.band(score),
			})
		}
	})
	sortResolved(out)
	return out, best
}

func (r *Resolver) band(score float64) Confidence {
	switch {
	case score >= r.cfg.HighConfidenceScore:
		return ConfidenceHigh
	case score >= r.cfg.MedConfidenceScore:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Demote drops a confidence one tier; low stays low. Applied to paths of
// depth ≥ 2.
func Demote(c Confidence) Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func confidenceRank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// nameScore implements the symbol-name tiers: exact, mutual substring with
// length similarity, token overlap
func nameScore(name, hint string) float64 {
	a := strings.ToLower(name)
	b := strings.ToLower(hint)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		shorter, longer := float64(len(a)), float64(len(b))
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		if ratio := shorter / longer; ratio >= 0.4 {
			return 0.5 + 0.3*ratio
		}
	}
	if overlap := jaccard(tokenize(name), tokenize(hint)); overlap >= 0.25 {
		return overlap * 0.9
	}
	return 0
}

// pathScore scores a workspace-relative path against a file hint with the
// same tiers as nameScore
func pathScore(relPath, hint string) float64 {
	return nameScore(relPath, hint)
}

// keywordScore matches one keyword against name tokens: exact 1.0,
// prefix/suffix overlap 0.7, substring 0.4
func keywordScore(kw string, tokens []string) float64 {
	best := 0.0
	for _, t := range tokens {
		switch {
		case t == kw:
			return 1.0
		case strings.HasPrefix(t, kw) || strings.HasSuffix(t, kw) ||
			strings.HasPrefix(kw, t) || strings.HasSuffix(kw, t):
			if best < 0.7 {
				best = 0.7
			}
		case strings.Contains(t, kw) || strings.Contains(kw, t):
			if best < 0.4 {
				best = 0.4
			}
		}
	}
	return best
}

func exportedBonus(score float64, exported bool) float64 {
	if exported {
		score += 0.05
	}
	if score > 1 {
		return 1
	}
	return score
}

func sortResolved(out []Resolved) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SymbolID < out[j].SymbolID
	})
}
