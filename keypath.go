package framebridge

import (
	"strings"

	"github.com/gobwas/glob"
)

const (
	// KeypathWildcard matches exactly one segment.
	KeypathWildcard = "*"
	// KeypathFuzzyWildcard matches zero or more segments.
	KeypathFuzzyWildcard = "**"
)

// Keypath addresses a node or property in the render tree, e.g.
// "Layer 1.Transform.Opacity". Keypaths are plain values; they are resolved
// against the tree each time they are used.
type Keypath struct {
	Segments []string
}

// NewKeypath builds a keypath from segments.
func NewKeypath(segments ...string) Keypath {
	return Keypath{Segments: append([]string(nil), segments...)}
}

// ParseKeypath splits a dotted keypath. Empty segments are dropped.
func ParseKeypath(s string) Keypath {
	parts := strings.Split(s, ".")
	segs := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segs = append(segs, p)
		}
	}
	return Keypath{Segments: segs}
}

// String joins the segments with dots.
func (k Keypath) String() string {
	return strings.Join(k.Segments, ".")
}

// IsEmpty reports whether the keypath has no segments.
func (k Keypath) IsEmpty() bool {
	return len(k.Segments) == 0
}

// Append returns a new keypath with segs added to the end.
func (k Keypath) Append(segs ...string) Keypath {
	out := make([]string, 0, len(k.Segments)+len(segs))
	out = append(out, k.Segments...)
	out = append(out, segs...)
	return Keypath{Segments: out}
}

// Last returns the final segment, or "" for an empty keypath.
func (k Keypath) Last() string {
	if len(k.Segments) == 0 {
		return ""
	}
	return k.Segments[len(k.Segments)-1]
}

// Matches reports whether the concrete path (no wildcards) is addressed by
// the pattern k. Matching is case-sensitive and covers the whole path.
func (k Keypath) Matches(path Keypath) bool {
	return k.matcher().match(path)
}

// keypathMatcher is a compiled keypath pattern. Paths are matched as
// ".seg1.seg2..." so that every segment starts after a separator; wildcards
// then only ever cover whole segments.
type keypathMatcher struct {
	g          glob.Glob // nil when no non-empty path matches
	matchEmpty bool
}

// matcher compiles k. Each "**" is expanded into a zero-segment and a
// one-or-more-segment alternative; "*" becomes one non-empty segment and
// literal segments are quoted.
func (k Keypath) matcher() keypathMatcher {
	m := keypathMatcher{matchEmpty: true}
	variants := []string{""}
	prev := ""
	for _, seg := range k.Segments {
		fuzzyRun := seg == KeypathFuzzyWildcard && prev == KeypathFuzzyWildcard
		prev = seg
		if fuzzyRun {
			continue
		}
		switch seg {
		case KeypathFuzzyWildcard:
			next := make([]string, 0, 2*len(variants))
			for _, v := range variants {
				next = append(next, v, v+".**")
			}
			variants = next
			continue
		case KeypathWildcard:
			seg = ".?*"
		default:
			seg = "." + glob.QuoteMeta(seg)
		}
		m.matchEmpty = false
		for i := range variants {
			variants[i] += seg
		}
	}

	seen := make(map[string]bool, len(variants))
	alts := variants[:0]
	for _, v := range variants {
		if v != "" && !seen[v] {
			seen[v] = true
			alts = append(alts, v)
		}
	}
	if len(alts) == 0 {
		return m
	}
	pattern := alts[0]
	if len(alts) > 1 {
		pattern = "{" + strings.Join(alts, ",") + "}"
	}
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return m
	}
	m.g = g
	return m
}

func (m keypathMatcher) match(path Keypath) bool {
	if path.IsEmpty() {
		return m.matchEmpty
	}
	return m.g != nil && m.g.Match("."+strings.Join(path.Segments, "."))
}
