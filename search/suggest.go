package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/civita/caseflow/indexing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Spanish)

// Suggest mines completion suggestions for a partial query: adjacent
// two-word phrases from the top semantic chunks that contain the partial
// string (case-insensitive), Title-cased, deduplicated, capped at limit.
// A heuristic aid, not ranked by true relevance.
func (r *Retriever) Suggest(ctx context.Context, partial string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	partial = strings.ToLower(strings.TrimSpace(partial))
	if partial == "" {
		return nil, nil
	}

	vector, err := r.embedder.EmbedText(ctx, partial)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding partial query: %w", ErrRetrieval, err)
	}
	matches, err := r.index.Search(ctx, indexing.NormalizeVector(vector), limit*2)
	if err != nil {
		return nil, fmt.Errorf("%w: index search: %w", ErrRetrieval, err)
	}

	var suggestions []string
	seen := make(map[string]bool)
	for _, m := range matches {
		words := strings.Fields(strings.ToLower(m.Entry.Text))
		for i := 0; i+1 < len(words); i++ {
			phrase := words[i] + " " + words[i+1]
			if strings.Contains(phrase, partial) && !seen[phrase] {
				seen[phrase] = true
				suggestions = append(suggestions, titleCaser.String(phrase))
				if len(suggestions) >= limit {
					return suggestions, nil
				}
			}
		}
	}
	return suggestions, nil
}
