package intent

import (
	"context"
	"testing"

	"blastradius/internal/config"
	"blastradius/internal/graph"
	"blastradius/internal/logging"
	"blastradius/internal/symbols"
)

// fakeOracle returns a canned descriptor
type fakeOracle struct {
	desc *Descriptor
	err  error
}

func (f *fakeOracle) Describe(ctx context.Context, prompt string, grounding *Grounding) (*Descriptor, error) {
	if f.err != nil {
		return nil, f.err
	}
	d := *f.desc
	d.Prompt = prompt
	return &d, nil
}

// pipelineFixture builds: B in lib.ts; A in app.ts referencing B; C in
// deep.ts referencing A; plus an intra-file sibling of B in lib.ts that
// also references B.
func pipelineFixture() (*symbols.Index, *graph.Store) {
	ix := symbols.NewIndex()
	add := func(qual, file string, exported bool) string {
		id := symbols.ID(file, qual)
		ix.Put(&symbols.Symbol{
			ID: id, Name: qual, QualifiedName: qual,
			Kind: symbols.KindFunction, FilePath: file, Exported: exported,
		})
		return id
	}
	b := add("buildPayload", "/w/lib.ts", true)
	sib := add("formatPayload", "/w/lib.ts", false)
	a := add("sendPayload", "/w/app.ts", true)
	c := add("retryLoop", "/w/deep.ts", true)

	g := graph.NewStore()
	g.AddEdge(a, b)
	g.AddEdge(sib, b)
	g.AddEdge(c, a)
	return ix, g
}

func newPipeline(o Oracle) *Pipeline {
	return NewPipeline(o, config.Default("/w"), logging.Discard())
}

func TestModifyPublicAPIRipples(t *testing.T) {
	ix, g := pipelineFixture()
	p := newPipeline(&fakeOracle{desc: &Descriptor{
		ChangeType:       ChangeModify,
		SymbolHints:      []string{"buildPayload"},
		AffectsPublicAPI: true,
		Summary:          "change payload shape",
	}})

	out, err := p.Analyze(context.Background(), "change the payload shape", ix, g)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Relevant {
		t.Fatal("hinted prompt judged irrelevant")
	}

	depth := out.Result.DepthMap
	if depth["/w/app.ts#sendPayload"] != 1 {
		t.Errorf("depth[sendPayload] = %d", depth["/w/app.ts#sendPayload"])
	}
	if depth["/w/deep.ts#retryLoop"] != 2 {
		t.Errorf("depth[retryLoop] = %d", depth["/w/deep.ts#retryLoop"])
	}
}

func TestConfidenceDegradesWithDepth(t *testing.T) {
	ix, g := pipelineFixture()
	p := newPipeline(&fakeOracle{desc: &Descriptor{
		ChangeType:       ChangeModify,
		SymbolHints:      []string{"buildPayload"},
		AffectsPublicAPI: true,
	}})

	out, err := p.Analyze(context.Background(), "adjust buildPayload", ix, g)
	if err != nil {
		t.Fatal(err)
	}

	// Root resolves exactly → high. Direct dependents keep the root's
	// confidence; depth ≥ 2 demotes one tier.
	if c := out.Confidences["/w/app.ts#sendPayload"]; c != ConfidenceHigh {
		t.Errorf("direct confidence = %s", c)
	}
	if c := out.Confidences["/w/deep.ts#retryLoop"]; c != ConfidenceMedium {
		t.Errorf("indirect confidence = %s", c)
	}
}

func TestDeleteKeepsReverseEdgesAndPostFilters(t *testing.T) {
	ix, g := pipelineFixture()
	p := newPipeline(&fakeOracle{desc: &Descriptor{
		ChangeType:  ChangeDelete,
		SymbolHints: []string{"buildPayload"},
	}})

	out, err := p.Analyze(context.Background(), "drop buildPayload", ix, g)
	if err != nil {
		t.Fatal(err)
	}

	// The live index is untouched by the shadow deletion.
	if !ix.Has("/w/lib.ts#buildPayload") {
		t.Fatal("shadow deletion leaked into the live index")
	}

	// sendPayload (other file) stays; formatPayload shares the root's file
	// and is stripped by the delete post-filter.
	inDirect := func(id string) bool {
		for _, d := range out.Result.DirectImpact {
			if d == id {
				return true
			}
		}
		return false
	}
	if !inDirect("/w/app.ts#sendPayload") {
		t.Errorf("cross-file dependent missing: %v", out.Result.DirectImpact)
	}
	if inDirect("/w/lib.ts#formatPayload") {
		t.Error("intra-file dependent survived the delete post-filter")
	}
	if _, ok := out.Result.DepthMap["/w/lib.ts#formatPayload"]; ok {
		t.Error("post-filter left the stripped id in the depth map")
	}
}

func TestAddIntentInsertsPhantoms(t *testing.T) {
	ix, g := pipelineFixture()
	p := newPipeline(&fakeOracle{desc: &Descriptor{
		ChangeType:  ChangeAdd,
		SymbolHints: []string{"buildPayload", "compressPayload"},
	}})

	out, err := p.Analyze(context.Background(), "add compression to the payload pipeline", ix, g)
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Phantoms) != 1 || out.Phantoms[0] != symbols.PhantomPrefix+"compressPayload" {
		t.Errorf("Phantoms = %v", out.Phantoms)
	}
	// Phantoms never seed traversals.
	for _, r := range out.Result.Roots {
		if symbols.IsPhantom(r.SymbolID) {
			t.Errorf("phantom became a root: %s", r.SymbolID)
		}
	}
	// The live index never sees them.
	if ix.Has(symbols.PhantomPrefix + "compressPayload") {
		t.Error("phantom leaked into the live index")
	}
}

func TestOracleFailureRunsNoAnalysis(t *testing.T) {
	ix, g := pipelineFixture()
	p := newPipeline(&fakeOracle{err: context.DeadlineExceeded})

	out, err := p.Analyze(context.Background(), "anything", ix, g)
	if err == nil {
		t.Fatal("oracle failure did not surface")
	}
	if out != nil {
		t.Error("analysis ran despite oracle failure")
	}
}

func TestIrrelevantPromptEmptyResult(t *testing.T) {
	ix, g := pipelineFixture()
	p := newPipeline(&fakeOracle{desc: &Descriptor{
		ChangeType: ChangeUnknown,
	}})

	out, err := p.Analyze(context.Background(), "train a neural network on MNIST", ix, g)
	if err != nil {
		t.Fatal(err)
	}
	if out.Relevant {
		t.Fatal("foreign prompt judged relevant")
	}
	if len(out.Result.DirectImpact)+len(out.Result.IndirectImpact) != 0 {
		t.Error("irrelevant prompt produced impact")
	}
}

func TestParseDescriptorFiltersNonStringHints(t *testing.T) {
	desc, err := ParseDescriptor("p", `{
		"changeType": "modify",
		"symbolHints": ["good", 42, null, "alsoGood"],
		"fileHints": [true],
		"affectsPublicApi": true,
		"summary": "s"
	}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(desc.SymbolHints) != 2 || desc.SymbolHints[0] != "good" || desc.SymbolHints[1] != "alsoGood" {
		t.Errorf("SymbolHints = %v", desc.SymbolHints)
	}
	if len(desc.FileHints) != 0 {
		t.Errorf("FileHints = %v", desc.FileHints)
	}
}

func TestParseDescriptorBadJSON(t *testing.T) {
	_, err := ParseDescriptor("p", "this is not json")
	if err == nil {
		t.Fatal("expected an IntentParseError")
	}
}

func TestBuildGroundingCapsAndOrdering(t *testing.T) {
	ix := symbols.NewIndex()
	for i := 0; i < 30; i++ {
		qual := "sym" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		ix.Put(&symbols.Symbol{
			ID: symbols.ID("/w/f.ts", qual), Name: qual, QualifiedName: qual,
			FilePath: "/w/f.ts", Exported: i%2 == 0,
		})
	}
	g := BuildGrounding(ix, "/w", 150, 10)
	if len(g.Symbols) != 10 {
		t.Fatalf("symbol cap not applied: %d", len(g.Symbols))
	}
	for _, s := range g.Symbols {
		if !s.Exported {
			t.Error("unexported symbol listed before exported ones ran out")
		}
	}
}
