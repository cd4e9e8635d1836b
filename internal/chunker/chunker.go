// Package chunker splits extracted text into overlapping fixed-size
// chunks for embedding. Units are characters (runes), not tokens: the
// same unit must be used for every ingestion of a corpus or chunk
// boundaries drift between runs.
package chunker

import "fmt"

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Split is deterministic and pure. Chunks cover the input exactly:
// dropping each chunk's leading overlap characters (except the first)
// and concatenating reproduces the input.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d", overlap, size)
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}, nil
	}

	step := size - overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
