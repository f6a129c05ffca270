package retriever

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"lci-chatbot/internal/contextutil"
)

// overFetchFactor widens the candidate pool fetched from the vector index
// before lexical re-ranking. Re-ranking changes order, never pool size, so
// the lexical boost needs extra candidates to work with.
const overFetchFactor = 2

// HybridSearch re-ranks vector search results with a lexical overlap score.
// The blended score is (1-w)*similarity + w*overlap where w is the
// configured keyword boost and overlap is the fraction of distinct query
// terms found verbatim, case-insensitively, in the chunk text.
func (r *Retriever) HybridSearch(ctx context.Context, query string, topK int, scoreThreshold float32, filters map[string]any) []Result {
	logger := contextutil.LoggerFromContext(ctx)

	if topK <= 0 {
		topK = r.opts.DefaultTopK
	}

	candidates := r.Search(ctx, query, topK*overFetchFactor, scoreThreshold, filters)
	if len(candidates) == 0 {
		return nil
	}

	weight := r.opts.KeywordBoost
	queryTerms := distinctTerms(query)

	type scored struct {
		result  Result
		blended float32
	}
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		overlap := lexicalOverlap(queryTerms, candidate.Text)
		blended := (1-weight)*candidate.Similarity + weight*overlap
		ranked = append(ranked, scored{result: candidate, blended: blended})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].blended > ranked[j].blended
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	results := make([]Result, 0, len(ranked))
	for _, item := range ranked {
		results = append(results, item.result)
	}

	logger.InfoContext(ctx, "hybrid search completed",
		"candidates", len(candidates),
		"results", len(results),
		"keyword_boost", weight,
	)
	return results
}

// lexicalOverlap returns the fraction of distinct query terms present in
// the chunk text.
func lexicalOverlap(queryTerms []string, chunkText string) float32 {
	if len(queryTerms) == 0 {
		return 0
	}

	lower := strings.ToLower(chunkText)
	var matches int
	for _, term := range queryTerms {
		if strings.Contains(lower, term) {
			matches++
		}
	}
	return float32(matches) / float32(len(queryTerms))
}

// distinctTerms lowercases and tokenizes the query, dropping duplicates so
// repeated words cannot inflate the overlap fraction.
func distinctTerms(query string) []string {
	var builder strings.Builder
	builder.Grow(len(query))
	for _, r := range strings.ToLower(query) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}

	seen := make(map[string]struct{})
	var terms []string
	for _, token := range strings.Fields(builder.String()) {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
	}
	return terms
}
