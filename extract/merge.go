package extract

import "github.com/hazyhaar/surveypipe/survey"

// MergeChunkResults combines per-chunk extractions into one deduplicated
// question list in first-seen order. A question split across a chunk
// boundary comes back from both chunks, usually partially; merging keeps
// the longer text, unions options by code and skip rules by condition, and
// backfills empty scalar fields.
func MergeChunkResults(chunkResults [][]survey.Question) []survey.Question {
	index := make(map[string]int)
	var merged []survey.Question

	for _, questions := range chunkResults {
		for _, q := range questions {
			i, ok := index[q.Number]
			if !ok {
				index[q.Number] = len(merged)
				merged = append(merged, q)
				continue
			}
			mergeInto(&merged[i], q)
		}
	}

	return merged
}

func mergeInto(dst *survey.Question, src survey.Question) {
	if len(src.Text) > len(dst.Text) {
		dst.Text = src.Text
	}

	codes := make(map[string]bool, len(dst.Options))
	for _, opt := range dst.Options {
		codes[opt.Code] = true
	}
	for _, opt := range src.Options {
		if !codes[opt.Code] {
			dst.Options = append(dst.Options, opt)
			codes[opt.Code] = true
		}
	}

	conditions := make(map[string]bool, len(dst.SkipRules))
	for _, rule := range dst.SkipRules {
		conditions[rule.Condition] = true
	}
	for _, rule := range src.SkipRules {
		if !conditions[rule.Condition] {
			dst.SkipRules = append(dst.SkipRules, rule)
			conditions[rule.Condition] = true
		}
	}

	if dst.Type == "" {
		dst.Type = src.Type
	}
	if dst.Filter == "" {
		dst.Filter = src.Filter
	}
	if dst.ResponseBase == "" {
		dst.ResponseBase = src.ResponseBase
	}
	if dst.Instructions == "" {
		dst.Instructions = src.Instructions
	}
}
