package services

import (
	"sort"
	"strings"

	"github.com/klartext/klartext/internal/core/domain"
)

// Recombine reassembles per-chunk terminal results into the final response.
// Output is always in original ordinal order regardless of the order chunks
// finished in, and no chunk is ever dropped: failed chunks carry their
// safe-fallback message. Warnings are aggregated in ordinal order with
// duplicates removed.
func Recombine(results []domain.ChunkResult) domain.SimplifyResponse {
	sorted := make([]domain.ChunkResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })

	parts := make([]string, 0, len(sorted))
	var warnings []string
	seen := make(map[string]struct{})

	for _, res := range sorted {
		if text := strings.TrimSpace(res.Text); text != "" {
			parts = append(parts, text)
		}
		for _, w := range res.Warnings {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			warnings = append(warnings, w)
		}
	}

	return domain.SimplifyResponse{
		SimplifiedText: strings.Join(parts, "\n\n"),
		Warnings:       warnings,
		Chunks:         sorted,
	}
}
