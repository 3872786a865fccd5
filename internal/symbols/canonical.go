package symbols

import (
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// signatureHashLen is the truncated hex length of a signature hash
const signatureHashLen = 16

// HashSignature computes the 16-hex-digit fingerprint of a canonicalized
// signature text
func HashSignature(canonical string) string {
	sum := blake2b.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:signatureHashLen]
}

// CanonicalizeType normalizes a declared type so that logically commutative
// spellings hash identically: whitespace runs collapse to single spaces,
// top-level union and intersection members are sorted, and top-level
// object-literal property signatures are sorted. "Top-level" means bracket
// depth zero with respect to <>, {}, (), [].
func CanonicalizeType(typeText string) string {
	t := collapseWhitespace(typeText)
	if t == "" {
		return t
	}

	// Unions bind looser than intersections, so split on '|' first.
	if parts := splitTopLevel(t, '|'); len(parts) > 1 {
		for i, p := range parts {
			parts[i] = CanonicalizeType(p)
		}
		sort.Strings(parts)
		return strings.Join(parts, " | ")
	}
	if parts := splitTopLevel(t, '&'); len(parts) > 1 {
		for i, p := range parts {
			parts[i] = CanonicalizeType(p)
		}
		sort.Strings(parts)
		return strings.Join(parts, " & ")
	}

	// Whole-string object literal: sort its top-level property signatures.
	if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") && coversWhole(t) {
		inner := strings.TrimSpace(t[1 : len(t)-1])
		members := splitMembers(inner)
		for i, m := range members {
			members[i] = strings.TrimSpace(m)
		}
		sort.Strings(members)
		return "{ " + strings.Join(members, "; ") + " }"
	}

	return t
}

// collapseWhitespace trims and replaces every whitespace run with one space
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitTopLevel splits s on sep occurrences at bracket depth zero. The
// separator is skipped when it is half of '||' or '&&'.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '{', '(', '[':
			depth++
		case '>', '}', ')', ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth != 0 {
				continue
			}
			if i+1 < len(s) && s[i+1] == sep {
				i++ // '||' or '&&' operator, not a type separator
				continue
			}
			if i > 0 && s[i-1] == sep {
				continue
			}
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

// splitMembers splits object-literal member text on ';' and ',' at depth zero
func splitMembers(s string) []string {
	var members []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '{', '(', '[':
			depth++
		case '>', '}', ')', ']':
			if depth > 0 {
				depth--
			}
		case ';', ',':
			if depth == 0 {
				m := strings.TrimSpace(s[start:i])
				if m != "" {
					members = append(members, m)
				}
				start = i + 1
			}
		}
	}
	if m := strings.TrimSpace(s[start:]); m != "" {
		members = append(members, m)
	}
	return members
}

// coversWhole reports whether the brace opening s closes only at its end,
// i.e. the whole string is one object literal rather than "{a} | {b}".
func coversWhole(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '{', '(', '[':
			depth++
		case '>', '}', ')', ']':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// CallableSignature renders the canonical form of a callable:
// (name:canonType,...):canonReturn
func CallableSignature(params []Param, returnType string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Name)
		b.WriteByte(':')
		b.WriteString(CanonicalizeType(p.Type))
	}
	b.WriteString("):")
	b.WriteString(CanonicalizeType(returnType))
	return b.String()
}

// Param is one callable parameter
type Param struct {
	Name string
	Type string
}

// InterfaceSignature renders sorted canonicalized member texts joined by ';'
func InterfaceSignature(memberTexts []string) string {
	canon := make([]string, 0, len(memberTexts))
	for _, m := range memberTexts {
		canon = append(canon, CanonicalizeType(m))
	}
	sort.Strings(canon)
	return strings.Join(canon, ";")
}

// ClassSignature renders class:<baseClass>:[sorted implements list]
func ClassSignature(baseClass string, implements []string) string {
	impl := make([]string, len(implements))
	copy(impl, implements)
	sort.Strings(impl)
	return "class:" + collapseWhitespace(baseClass) + ":[" + strings.Join(impl, " ") + "]"
}

// EnumSignature renders sorted name=value pairs
func EnumSignature(members []Param) string {
	pairs := make([]string, 0, len(members))
	for _, m := range members {
		pairs = append(pairs, m.Name+"="+collapseWhitespace(m.Type))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
