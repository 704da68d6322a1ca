package pipeline

import (
	"sort"
	"strings"
)

// Score weighs raw engagement numbers into a single ranking value. Views
// dominate, likes and comments signal that viewers cared enough to react.
func Score(views, likes, comments uint64) float64 {
	return float64(views) + 5*float64(likes) + 10*float64(comments)
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "for": {}, "how": {}, "in": {},
	"is": {}, "of": {}, "on": {}, "the": {}, "to": {}, "with": {},
	"you": {}, "your": {}, "vs": {}, "what": {}, "why": {},
}

// relatedKeywords derives suggestion terms from the result titles: frequent
// words that are not part of the searched keyword itself.
func relatedKeywords(keyword string, titles []string) []string {
	base := map[string]struct{}{}
	for _, w := range tokenize(keyword) {
		base[w] = struct{}{}
	}

	counts := map[string]int{}
	for _, title := range titles {
		seen := map[string]struct{}{}
		for _, w := range tokenize(title) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, own := base[w]; own {
				continue
			}
			if _, stop := stopwords[w]; stop {
				continue
			}
			counts[w]++
		}
	}

	type wordCount struct {
		word  string
		count int
	}
	ranked := make([]wordCount, 0, len(counts))
	for w, n := range counts {
		if n >= 2 {
			ranked = append(ranked, wordCount{w, n})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	const maxRelated = 10
	out := make([]string, 0, maxRelated)
	for _, wc := range ranked {
		out = append(out, wc.word)
		if len(out) == maxRelated {
			break
		}
	}
	return out
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 3 {
			out = append(out, f)
		}
	}
	return out
}
