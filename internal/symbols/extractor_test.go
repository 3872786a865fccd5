package symbols

import (
	"context"
	"testing"

	"blastradius/internal/logging"
	"blastradius/internal/parser"
)

const sampleSource = `export function greet(name: string): string {
  return "hi " + name;
}

function helper(): void {}

export class Service {
  port: number = 8080;
  start(host: string): void {}
}

export interface Config {
  host: string;
  port: number;
}

type Pair = Left | Right;

export enum Level {
  Low = 1,
  High = 2,
}

export const handler = (req: string): void => {};

namespace Util {
  export function inner(): void {}
}
`

func extractSample(t *testing.T) map[string]*Symbol {
	t.Helper()
	a := parser.NewAdapter(logging.Discard())
	f, err := a.ParseSource(context.Background(), "/w/sample.ts", []byte(sampleSource))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	byQual := make(map[string]*Symbol)
	for _, s := range Extract(f) {
		byQual[s.QualifiedName] = s
	}
	return byQual
}

func TestExtractKinds(t *testing.T) {
	syms := extractSample(t)

	cases := []struct {
		qualified string
		kind      Kind
		exported  bool
	}{
		{"greet", KindFunction, true},
		{"helper", KindFunction, false},
		{"Service", KindClass, true},
		{"Service.port", KindProperty, true},
		{"Service.start", KindMethod, true},
		{"Config", KindInterface, true},
		{"Pair", KindTypeAlias, false},
		{"Level", KindEnum, true},
		{"handler", KindVariable, true},
		{"Util.inner", KindFunction, true},
	}
	for _, tc := range cases {
		t.Run(tc.qualified, func(t *testing.T) {
			s, ok := syms[tc.qualified]
			if !ok {
				t.Fatalf("symbol %q not extracted (got %d symbols)", tc.qualified, len(syms))
			}
			if s.Kind != tc.kind {
				t.Errorf("kind = %s, want %s", s.Kind, tc.kind)
			}
			if s.Exported != tc.exported {
				t.Errorf("exported = %v, want %v", s.Exported, tc.exported)
			}
			if s.SignatureHash == "" || len(s.SignatureHash) != 16 {
				t.Errorf("signature hash = %q", s.SignatureHash)
			}
		})
	}
}

func TestExtractIDsAndParents(t *testing.T) {
	syms := extractSample(t)

	if syms["greet"].ID != "/w/sample.ts#greet" {
		t.Errorf("ID = %q", syms["greet"].ID)
	}
	if syms["Service.start"].ParentID != "/w/sample.ts#Service" {
		t.Errorf("method parent = %q", syms["Service.start"].ParentID)
	}
	if syms["Service.port"].ParentID != "/w/sample.ts#Service" {
		t.Errorf("property parent = %q", syms["Service.port"].ParentID)
	}
}

func TestExtractPositions(t *testing.T) {
	syms := extractSample(t)

	g := syms["greet"]
	if g.StartLine != 1 || g.EndLine != 3 {
		t.Errorf("greet lines = %d..%d", g.StartLine, g.EndLine)
	}
	if g.StartPos < 0 || g.EndPos <= g.StartPos {
		t.Errorf("greet offsets = %d..%d", g.StartPos, g.EndPos)
	}
}

func TestStableIDAcrossReparses(t *testing.T) {
	first := extractSample(t)
	second := extractSample(t)
	for qual, s := range first {
		if second[qual] == nil || second[qual].ID != s.ID {
			t.Errorf("ID for %q not stable across re-parses", qual)
		}
	}
}

func TestUnionOrderDoesNotChangeAliasHash(t *testing.T) {
	a := parser.NewAdapter(logging.Discard())
	f1, err := a.ParseSource(context.Background(), "/w/u1.ts", []byte("type P = Left | Right;\n"))
	if err != nil {
		t.Fatal(err)
	}
	f2, err := a.ParseSource(context.Background(), "/w/u2.ts", []byte("type P = Right  |  Left;\n"))
	if err != nil {
		t.Fatal(err)
	}
	s1 := Extract(f1)
	s2 := Extract(f2)
	if len(s1) != 1 || len(s2) != 1 {
		t.Fatalf("extract counts: %d, %d", len(s1), len(s2))
	}
	if s1[0].SignatureHash != s2[0].SignatureHash {
		t.Errorf("union member order changed the alias hash: %q vs %q",
			s1[0].SignatureHash, s2[0].SignatureHash)
	}
}

func TestBodyChangeKeepsCallableHash(t *testing.T) {
	a := parser.NewAdapter(logging.Discard())
	f1, err := a.ParseSource(context.Background(), "/w/c1.ts", []byte("export function f(x: number): string { return \"a\"; }\n"))
	if err != nil {
		t.Fatal(err)
	}
	f2, err := a.ParseSource(context.Background(), "/w/c2.ts", []byte("export function f(x: number): string { return \"totally different\"; }\n"))
	if err != nil {
		t.Fatal(err)
	}
	if Extract(f1)[0].SignatureHash != Extract(f2)[0].SignatureHash {
		t.Error("body change altered the signature hash")
	}

	f3, err := a.ParseSource(context.Background(), "/w/c3.ts", []byte("export function f(x: number): number { return 1; }\n"))
	if err != nil {
		t.Fatal(err)
	}
	if Extract(f1)[0].SignatureHash == Extract(f3)[0].SignatureHash {
		t.Error("return type change did not alter the signature hash")
	}
}

func TestIndexCloneIsShallow(t *testing.T) {
	ix := NewIndex()
	s := &Symbol{ID: "/w/a.ts#x", FilePath: "/w/a.ts", QualifiedName: "x"}
	ix.Put(s)

	clone := ix.Clone()
	clone.Remove("/w/a.ts#x")
	if !ix.Has("/w/a.ts#x") {
		t.Error("removing from the clone affected the original")
	}
	if clone.Has("/w/a.ts#x") {
		t.Error("clone removal did not apply")
	}

	clone2 := ix.Clone()
	if clone2.Get("/w/a.ts#x") != s {
		t.Error("clone should share symbol records")
	}
}
