package chunker

import "strings"

// Large-context model families whose output window fits hundreds of
// question objects per call.
var largeOutputModels = map[string]bool{
	"gemini-2.5-flash": true,
	"gemini-2.5-pro":   true,
}

// MaxQuestionsForModel returns the per-chunk question ceiling for a model.
// Each extracted question costs roughly 100 output tokens, so the ceiling
// follows the model's output window rather than its context window.
func MaxQuestionsForModel(model string) int {
	if largeOutputModels[model] {
		return 400
	}
	return 80
}

// Rechunk splits any chunk whose scanned question count exceeds maxPerChunk,
// cutting before question-start lines so the model's output never truncates
// mid-question. Chunks under the ceiling pass through untouched. The
// returned hint lists are rescanned from the new chunk texts.
func Rechunk(chunks []string, hintsPerChunk [][]Hint, maxPerChunk int) ([]string, [][]Hint) {
	var newChunks []string
	var newHints [][]Hint

	for i, chunk := range chunks {
		if len(hintsPerChunk[i]) <= maxPerChunk {
			newChunks = append(newChunks, chunk)
			newHints = append(newHints, hintsPerChunk[i])
			continue
		}

		var sub []string
		count := 0
		for _, line := range strings.Split(chunk, "\n") {
			_, matched := matchQuestionLine(line)
			if matched && count >= maxPerChunk && len(sub) > 0 {
				text := strings.Join(sub, "\n")
				newChunks = append(newChunks, text)
				newHints = append(newHints, ScanQuestions(text))
				sub = nil
				count = 0
			}
			sub = append(sub, line)
			if matched {
				count++
			}
		}
		if len(sub) > 0 {
			text := strings.Join(sub, "\n")
			newChunks = append(newChunks, text)
			newHints = append(newHints, ScanQuestions(text))
		}
	}

	return newChunks, newHints
}
