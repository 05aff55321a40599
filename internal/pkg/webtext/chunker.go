package webtext

import (
	"strings"
)

// DefaultMaxChunkWords caps the word count of a single passage.
const DefaultMaxChunkWords = 700

// Chunker splits cleaned text into passages bounded by a word cap.
type Chunker struct {
	maxWords int
}

// NewChunker creates a Chunker. maxWords <= 0 selects the default.
func NewChunker(maxWords int) *Chunker {
	if maxWords <= 0 {
		maxWords = DefaultMaxChunkWords
	}
	return &Chunker{maxWords: maxWords}
}

// SplitSentences splits text into sentence-like units using terminal
// punctuation followed by whitespace as the boundary heuristic.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)

		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && runes[i+1] == ' ' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
			// Swallow the run of spaces after the terminator.
			for i+1 < len(runes) && runes[i+1] == ' ' {
				i++
			}
		}
	}

	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// Chunk accumulates sentences into passages of at most maxWords words.
// A single sentence longer than the cap is kept whole in its own
// passage rather than truncated. Empty input yields nil.
func (c *Chunker) Chunk(text string) []string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		sentenceLen := len(strings.Fields(sentence))

		if currentLen+sentenceLen > c.maxWords && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			currentLen = 0
		}

		current = append(current, sentence)
		currentLen += sentenceLen
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// Process runs the full clean-then-chunk pipeline for one page.
func Process(text string, minLineChars, maxWords int) []string {
	cleaned := NewCleaner(minLineChars).Clean(text)
	if cleaned == "" {
		return nil
	}
	return NewChunker(maxWords).Chunk(cleaned)
}
