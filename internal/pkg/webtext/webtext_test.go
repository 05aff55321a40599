package webtext

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanerEmptyInput(t *testing.T) {
	c := NewCleaner(0)
	assert.Equal(t, "", c.Clean(""))
}

func TestCleanerRemovesBoilerplate(t *testing.T) {
	c := NewCleaner(0)

	in := "We build reliable industrial pumps for water treatment plants. " +
		"Privacy Policy. Copyright © 2024 Acme Corp, all rights reserved. " +
		"Our pumps are certified for continuous operation in harsh environments."
	out := c.Clean(in)

	assert.Contains(t, out, "reliable industrial pumps")
	assert.Contains(t, out, "continuous operation")
	assert.NotContains(t, strings.ToLower(out), "privacy policy")
	assert.NotContains(t, strings.ToLower(out), "copyright")
	assert.NotContains(t, out, "© 2024")
}

func TestCleanerRemovesURLsEmailsPhones(t *testing.T) {
	c := NewCleaner(0)

	in := "Contact our engineering team to discuss the installation details. " +
		"Reach us at sales@example.com or call +1 555 123 4567 today, " +
		"or visit https://example.com/contact for directions to the office."
	out := c.Clean(in)

	assert.NotContains(t, out, "sales@example.com")
	assert.NotContains(t, out, "555 123 4567")
	assert.NotContains(t, out, "https://example.com")
	assert.Contains(t, out, "engineering team")
}

func TestCleanerDropsShortSegments(t *testing.T) {
	c := NewCleaner(25)

	in := "Yes. No. Maybe. This segment is comfortably longer than the minimum length."
	out := c.Clean(in)

	assert.NotContains(t, out, "Yes")
	assert.Contains(t, out, "comfortably longer")
}

func TestCleanerDeduplicatesCaseInsensitive(t *testing.T) {
	c := NewCleaner(0)

	seg := "this segment shows up more than once in the page"
	in := seg + ". " + strings.ToUpper(seg) + ". " + seg + "."
	out := c.Clean(in)

	assert.Equal(t, 1, strings.Count(strings.ToLower(out), seg))
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First sentence. Second one! Third? Trailing fragment")
	require.Len(t, got, 4)
	assert.Equal(t, "First sentence.", got[0])
	assert.Equal(t, "Second one!", got[1])
	assert.Equal(t, "Third?", got[2])
	assert.Equal(t, "Trailing fragment", got[3])
}

func TestSplitSentencesEmpty(t *testing.T) {
	assert.Empty(t, SplitSentences(""))
	assert.Empty(t, SplitSentences("   "))
}

func TestChunkerRespectsWordCap(t *testing.T) {
	ch := NewChunker(10)

	var sentences []string
	for i := 0; i < 6; i++ {
		sentences = append(sentences, fmt.Sprintf("sentence number %d has six words total.", i))
	}
	chunks := ch.Chunk(strings.Join(sentences, " "))

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(strings.Fields(chunk)), 10)
	}

	// No content lost.
	joined := strings.Join(chunks, " ")
	for i := 0; i < 6; i++ {
		assert.Contains(t, joined, fmt.Sprintf("number %d", i))
	}
}

func TestChunkerOverlongSentenceKeptWhole(t *testing.T) {
	ch := NewChunker(5)

	long := "this single sentence runs well past the configured word cap without any terminator"
	chunks := ch.Chunk(long)

	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0])
}

func TestChunkerEmptyInput(t *testing.T) {
	ch := NewChunker(0)
	assert.Nil(t, ch.Chunk(""))
}

func TestProcessPipeline(t *testing.T) {
	raw := "Our company manufactures precision gears for wind turbines across Europe. " +
		"Follow us. Privacy policy. " +
		"Each gearbox is tested for twenty thousand hours before it ships to customers."
	chunks := Process(raw, 25, 700)

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "precision gears")
	assert.Contains(t, chunks[0], "twenty thousand hours")
	assert.NotContains(t, strings.ToLower(chunks[0]), "privacy policy")
}

func TestProcessEmptyAfterCleaning(t *testing.T) {
	// Everything is junk, nothing survives.
	chunks := Process("Follow us. Newsletter. Ok.", 25, 700)
	assert.Empty(t, chunks)
}
