package services

import (
	"path"

	"omniq/internal/models"
)

// sourceName derives the display name of a chunk's originating document:
// the base filename component of its stored source path.
func sourceName(chunk RetrievedChunk) string {
	if chunk.Source == "" {
		return ""
	}
	return path.Base(chunk.Source)
}

// uniqueSources returns the distinct source filenames among the chunks in
// first-seen order. Citation markers and data points walk this same
// iteration, so the two never disagree within one response.
func uniqueSources(chunks []RetrievedChunk) []string {
	seen := make(map[string]bool, len(chunks))
	var sources []string
	for _, chunk := range chunks {
		name := sourceName(chunk)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sources = append(sources, name)
	}
	return sources
}

// supportingContent builds one record per retrieved chunk, in retrieval order
func supportingContent(chunks []RetrievedChunk) []models.SupportingContentRecord {
	records := make([]models.SupportingContentRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = models.SupportingContentRecord{
			Title:   sourceName(chunk),
			Content: chunk.Content,
		}
	}
	return records
}
