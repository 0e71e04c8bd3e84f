package chunker

import "strings"

// Chunker slices text into overlapping windows. Offsets are rune based so
// multi-byte characters never get split mid-codepoint.
type Chunker struct {
	Size    int
	Overlap int
}

func New(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrInvalidConfiguration
	}
	return &Chunker{Size: size, Overlap: overlap}, nil
}

// Split cuts text into chunks of at most Size runes where each chunk repeats
// the last Overlap runes of its predecessor. When the text past a window is
// shorter than the overlap the window absorbs it instead of emitting a chunk
// that would be pure repetition, so the final chunk may run up to
// Size+Overlap-1 runes. Every split is verified by reconstruction before it
// is returned.
func (c *Chunker) Split(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := c.Size - c.Overlap

	var chunks []string
	for start := 0; ; start += step {
		end := start + c.Size
		if end >= len(runes) || len(runes)-end < c.Overlap {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	if err := c.verify(text, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// verify strips the leading overlap from every chunk after the first and
// checks the concatenation against the original text.
func (c *Chunker) verify(text string, chunks []string) error {
	var sb strings.Builder
	for i, chunk := range chunks {
		if i == 0 {
			sb.WriteString(chunk)
			continue
		}
		sb.WriteString(string([]rune(chunk)[c.Overlap:]))
	}
	if sb.String() != text {
		return ErrReconstructionMismatch
	}
	return nil
}
