package keyword

import (
	"strings"

	"hotlist/internal/domain/textmatch"
)

type Result struct {
	Score   float64
	Matched []string
}

// Match scores how many of skills occur as whole words in text.
// Score is |matched| / max(|skills|, 1), capped at 1. Skills are
// deduplicated case-insensitively before counting.
func Match(skills []string, text string) Result {
	uniq := dedupe(skills)
	if len(uniq) == 0 || strings.TrimSpace(text) == "" {
		return Result{Score: 0, Matched: []string{}}
	}

	matched := textmatch.NewText(text).Matches(uniq)

	score := float64(len(matched)) / float64(max(len(uniq), 1))
	if score > 1 {
		score = 1
	}
	return Result{Score: score, Matched: matched}
}

func dedupe(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := textmatch.NormalizePhrase(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
