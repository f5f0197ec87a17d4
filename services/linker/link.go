// Package linker pairs player names spelled independently by two sources.
package linker

import (
	"footstats/lib/textutil"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

type Link struct {
	Target    string
	Candidate string
	// 1 for names equal once normalized, the Jaro-Winkler similarity of
	// the normalized names otherwise
	Similarity float64
}

type name struct {
	raw        string
	normalized string
}

func normalizeAll(names []string) []name {
	out := make([]name, len(names))
	for i, n := range names {
		out[i] = name{raw: n, normalized: textutil.NormalizeName(n)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].raw < out[j].raw
	})
	return out
}

// LinkNames links every target to at most one candidate and every candidate
// to at most one target. Targets are visited in sorted order.
//
//  1. a candidate equal to the target once normalized always wins.
//  2. otherwise candidates whose normalized name contains the target's, or
//     is contained by it, are ranked by similarity. ties go to the
//     lexicographically smaller candidate.
//
// Targets without any candidate are left out of the result.
func LinkNames(targets, candidates []string) []Link {
	normTargets := normalizeAll(targets)
	normCandidates := normalizeAll(candidates)

	var result []Link
	matchedTarget := make(map[string]struct{})
	matchedCandidate := make(map[string]struct{})

	for _, target := range normTargets {
		if _, ok := matchedTarget[target.raw]; ok {
			continue
		}
		if target.normalized == "" {
			continue
		}
		for _, candidate := range normCandidates {
			if _, ok := matchedCandidate[candidate.raw]; ok {
				continue
			}
			if target.normalized == candidate.normalized {
				result = append(result, Link{
					Target:     target.raw,
					Candidate:  candidate.raw,
					Similarity: 1,
				})
				matchedTarget[target.raw] = struct{}{}
				matchedCandidate[candidate.raw] = struct{}{}
				break
			}
		}
	}

	for _, target := range normTargets {
		if _, ok := matchedTarget[target.raw]; ok {
			continue
		}
		if target.normalized == "" {
			continue
		}

		var mostSimilarity float64
		var mostSimilar string
		found := false

		// candidates are sorted, so strictly greater keeps the smaller name on ties
		for _, candidate := range normCandidates {
			if _, ok := matchedCandidate[candidate.raw]; ok {
				continue
			}
			if candidate.normalized == "" {
				continue
			}
			if !strings.Contains(candidate.normalized, target.normalized) &&
				!strings.Contains(target.normalized, candidate.normalized) {
				continue
			}
			similarity := matchr.JaroWinkler(target.normalized, candidate.normalized, false)
			if !found || similarity > mostSimilarity {
				mostSimilarity = similarity
				mostSimilar = candidate.raw
				found = true
			}
		}

		if found {
			result = append(result, Link{
				Target:     target.raw,
				Candidate:  mostSimilar,
				Similarity: mostSimilarity,
			})
			matchedTarget[target.raw] = struct{}{}
			matchedCandidate[mostSimilar] = struct{}{}
		}
	}

	return result
}

// Lookup indexes links by target.
func Lookup(links []Link) map[string]Link {
	out := make(map[string]Link, len(links))
	for _, l := range links {
		out[l.Target] = l
	}
	return out
}
