// Package dedup groups documents by content digest and picks one
// keeper per group under a configurable policy.
package dedup

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Policy selects how the keeper of a duplicate group is chosen. Every
// policy is a total order over the group; ties fall back to path
// comparison so the result is deterministic.
type Policy string

const (
	// CleanSuffix prefers names ending exactly in ".pdf", penalizes
	// trailing junk characters, then larger size, then newer mtime.
	CleanSuffix Policy = "clean-suffix"
	// Largest prefers the biggest file by byte size.
	Largest Policy = "largest"
	// Newest prefers the most recently modified file.
	Newest Policy = "newest"
	// NewestLargest compares modification time first, size second.
	NewestLargest Policy = "newest-largest"
)

// ParsePolicy validates a policy string from config or flags.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case CleanSuffix, Largest, Newest, NewestLargest:
		return p, nil
	}
	return "", fmt.Errorf("unknown keep policy %q", s)
}

// File is one candidate within a duplicate group.
type File struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Group is a set of bit-identical files with the keeper singled out.
type Group struct {
	Digest     string
	Keeper     File
	Duplicates []File
}

// Groups partitions files by digest and selects a keeper for every
// group with more than one member. Groups are returned in digest order
// with duplicates sorted by path; singletons are omitted.
func Groups(byDigest map[string][]File, policy Policy) []Group {
	digests := make([]string, 0, len(byDigest))
	for d, members := range byDigest {
		if len(members) > 1 {
			digests = append(digests, d)
		}
	}
	sort.Strings(digests)

	groups := make([]Group, 0, len(digests))
	for _, d := range digests {
		members := byDigest[d]
		keeper := members[0]
		for _, f := range members[1:] {
			if beats(f, keeper, policy) {
				keeper = f
			}
		}
		g := Group{Digest: d, Keeper: keeper}
		for _, f := range members {
			if f.Path != keeper.Path {
				g.Duplicates = append(g.Duplicates, f)
			}
		}
		sort.Slice(g.Duplicates, func(i, j int) bool {
			return g.Duplicates[i].Path < g.Duplicates[j].Path
		})
		groups = append(groups, g)
	}
	return groups
}

// beats reports whether a outranks b under the policy.
func beats(a, b File, policy Policy) bool {
	switch policy {
	case Largest:
		if a.Size != b.Size {
			return a.Size > b.Size
		}
	case Newest:
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
	case NewestLargest:
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		if a.Size != b.Size {
			return a.Size > b.Size
		}
	default: // CleanSuffix
		if sa, sb := suffixScore(a.Path), suffixScore(b.Path); sa != sb {
			return sa > sb
		}
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
	}
	return a.Path < b.Path
}

// suffixScore ranks how clean a file's name ends: an exact .pdf suffix
// wins, known junk tails (.pdf_, .pdf~, .pdfx) lose to everything else.
func suffixScore(path string) int {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return 2
	case strings.HasSuffix(lower, ".pdf_"),
		strings.HasSuffix(lower, ".pdf~"),
		strings.HasSuffix(lower, ".pdfx"):
		return 0
	}
	return 1
}
