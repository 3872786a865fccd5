package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"blastradius/internal/engine"
	"blastradius/internal/intent"
)

// OutputFormat selects how command results are rendered
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// formatResult renders a traversal result
func formatResult(result *engine.Result, format OutputFormat) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Roots (%d):\n", len(result.Roots))
	for _, r := range result.Roots {
		fmt.Fprintf(&b, "  %s  [%s, %s]\n", r.SymbolID, r.Mode, r.Reason)
	}
	fmt.Fprintf(&b, "Direct impact (%d):\n", len(result.DirectImpact))
	for _, id := range result.DirectImpact {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	fmt.Fprintf(&b, "Indirect impact (%d):\n", len(result.IndirectImpact))
	for _, id := range result.IndirectImpact {
		fmt.Fprintf(&b, "  %s  (depth %d)\n", id, result.DepthMap[id])
	}
	if len(result.Paths) > 0 {
		b.WriteString("Paths:\n")
		for _, id := range append(append([]string{}, result.DirectImpact...), result.IndirectImpact...) {
			for _, path := range result.Paths[id] {
				fmt.Fprintf(&b, "  %s\n", strings.Join(path, " <- "))
			}
		}
	}
	return b.String(), nil
}

// formatOutcome renders an intent analysis outcome
func formatOutcome(outcome *intent.Outcome, format OutputFormat) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var b strings.Builder
	if !outcome.Relevant {
		b.WriteString("The prompt does not appear to relate to this codebase.\n")
		return b.String(), nil
	}
	fmt.Fprintf(&b, "Intent: %s (%s)\n", outcome.Descriptor.Summary, outcome.Descriptor.ChangeType)
	fmt.Fprintf(&b, "Resolved symbols (%d):\n", len(outcome.Resolved))
	for _, r := range outcome.Resolved {
		fmt.Fprintf(&b, "  %s  score=%.2f %s\n", r.SymbolID, r.Score, r.Confidence)
	}
	for _, id := range outcome.Phantoms {
		fmt.Fprintf(&b, "  %s  (hypothetical)\n", id)
	}
	body, err := formatResult(outcome.Result, FormatHuman)
	if err != nil {
		return "", err
	}
	b.WriteString(body)
	if len(outcome.Confidences) > 0 {
		b.WriteString("Confidence:\n")
		for _, id := range append(append([]string{}, outcome.Result.DirectImpact...), outcome.Result.IndirectImpact...) {
			if c, ok := outcome.Confidences[id]; ok {
				fmt.Fprintf(&b, "  %s  %s\n", id, c)
			}
		}
	}
	return b.String(), nil
}
