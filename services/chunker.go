package services

import "fmt"

// ChunkText splits text into overlapping character windows. Window i starts
// at offset i*(window-overlap); every window is exactly window characters
// long except the last, which is truncated to the remaining text.
// Concatenating the windows with the overlapping regions removed yields the
// input exactly.
func ChunkText(text string, window, overlap int) ([]string, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: chunk window must be positive, got %d", ErrConfig, window)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfig, overlap)
	}
	if overlap >= window {
		return nil, fmt.Errorf("%w: chunk overlap (%d) must be smaller than window (%d)", ErrConfig, overlap, window)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	stride := window - overlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
