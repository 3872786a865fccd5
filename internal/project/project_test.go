package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"blastradius/internal/config"
	"blastradius/internal/logging"
	"blastradius/internal/symbols"
)

const libSource = `export function helper(): void {}
`

const appSource = `import { helper } from "./lib";

export function run(): void {
  helper();
}
`

func setupProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	for name, src := range map[string]string{
		"lib.ts":        libSource,
		"app.ts":        appSource,
		"tsconfig.json": `{"compilerOptions":{"strict":true}}`,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, config.Default(dir)
}

func TestOpenRebuildsAndPersists(t *testing.T) {
	dir, cfg := setupProject(t)

	p, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	lib := symbols.NormalizePath(filepath.Join(dir, "lib.ts"))
	app := symbols.NormalizePath(filepath.Join(dir, "app.ts"))
	if !p.Index().Has(lib+"#helper") || !p.Index().Has(app+"#run") {
		t.Fatalf("symbols missing after rebuild: %v", p.Index().IDs())
	}
	if !p.Graph().HasEdge(app+"#run", lib+"#helper") {
		t.Error("edge missing after rebuild")
	}

	for _, artifact := range []string{"graph.json", "symbols.json", "fileHashes.json", "metadata.json"} {
		if _, err := os.Stat(filepath.Join(cfg.CacheDir(), artifact)); err != nil {
			t.Errorf("artifact %s not persisted: %v", artifact, err)
		}
	}
}

func TestOpenRestoresFromCache(t *testing.T) {
	dir, cfg := setupProject(t)

	first, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	wantLen := first.Index().Len()

	second, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if second.Index().Len() != wantLen {
		t.Errorf("restored index has %d symbols, want %d", second.Index().Len(), wantLen)
	}

	lib := symbols.NormalizePath(filepath.Join(dir, "lib.ts"))
	app := symbols.NormalizePath(filepath.Join(dir, "app.ts"))
	if !second.Graph().HasEdge(app+"#run", lib+"#helper") {
		t.Error("restored graph lost the edge without any re-walk")
	}
}

func TestOpenPatchesStaleFile(t *testing.T) {
	dir, cfg := setupProject(t)

	first, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	lib := symbols.NormalizePath(filepath.Join(dir, "lib.ts"))
	oldHash := first.Index().Get(lib + "#helper").SignatureHash

	// Change the signature on disk between sessions.
	if err := os.WriteFile(filepath.Join(dir, "lib.ts"),
		[]byte("export function helper(): number { return 1; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	second, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	s := second.Index().Get(lib + "#helper")
	if s == nil {
		t.Fatal("stale file lost its symbol")
	}
	if s.SignatureHash == oldHash {
		t.Error("stale file was not re-extracted on restore")
	}
}

func TestOpenDropsVanishedFiles(t *testing.T) {
	dir, cfg := setupProject(t)

	if _, err := Open(context.Background(), cfg, logging.Discard()); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "lib.ts")); err != nil {
		t.Fatal(err)
	}

	second, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	lib := symbols.NormalizePath(filepath.Join(dir, "lib.ts"))
	if second.Index().Has(lib + "#helper") {
		t.Error("symbol of a vanished file survived the restore sweep")
	}
}

func TestProjectHashChangeForcesRebuild(t *testing.T) {
	dir, cfg := setupProject(t)

	if _, err := Open(context.Background(), cfg, logging.Discard()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tsconfig.json"),
		[]byte(`{"compilerOptions":{"strict":false}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	// A changed project configuration must not reuse the cache silently;
	// the rebuilt state still carries every symbol.
	p, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	lib := symbols.NormalizePath(filepath.Join(dir, "lib.ts"))
	if !p.Index().Has(lib + "#helper") {
		t.Error("rebuild after project hash change lost symbols")
	}
}

func TestAnalyzeEditorRippleFindsDependents(t *testing.T) {
	dir, cfg := setupProject(t)

	p, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	lib := symbols.NormalizePath(filepath.Join(dir, "lib.ts"))
	app := symbols.NormalizePath(filepath.Join(dir, "app.ts"))

	result, report, err := p.AnalyzeEditor(context.Background(), lib,
		[]byte("export function helper(): number { return 1; }\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Ripple) != 1 {
		t.Fatalf("Ripple = %v", report.Ripple)
	}
	if result.DepthMap[app+"#run"] != 1 {
		t.Errorf("editor ripple did not reach the dependent: %v", result.DepthMap)
	}
}

func TestAnalyzeEditorRemovalUsesOverlay(t *testing.T) {
	dir, cfg := setupProject(t)

	p, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	lib := symbols.NormalizePath(filepath.Join(dir, "lib.ts"))
	app := symbols.NormalizePath(filepath.Join(dir, "app.ts"))

	// The buffer now renames helper away: its dependents are only findable
	// through the pre-eviction snapshot.
	result, report, err := p.AnalyzeEditor(context.Background(), lib,
		[]byte("export function helperRenamed(): void {}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Removed) != 1 || report.Removed[0] != lib+"#helper" {
		t.Fatalf("Removed = %v", report.Removed)
	}
	if result.DepthMap[app+"#run"] != 1 {
		t.Errorf("removed symbol's dependent not found via overlay: %v", result.DepthMap)
	}
}

func TestAnalyzeStagedOutsideRepositoryIsEmpty(t *testing.T) {
	_, cfg := setupProject(t)

	p, err := Open(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	result, err := p.AnalyzeStaged(context.Background())
	if err != nil {
		t.Fatalf("missing repository should not be an error: %v", err)
	}
	if result == nil || len(result.Roots) != 0 {
		t.Errorf("expected an empty result, got %+v", result)
	}
}
