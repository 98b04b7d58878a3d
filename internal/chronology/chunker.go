package chronology

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"medchron/internal/domain"
)

// Chunk splits doc into word-aligned pieces of at most maxChars characters.
// A document within the limit is returned unchanged as the only element.
// A single word longer than maxChars forms a chunk of its own.
func Chunk(doc domain.Document, maxChars int) []domain.Document {
	if maxChars <= 0 || utf8.RuneCountInString(doc.Content) <= maxChars {
		return []domain.Document{doc}
	}

	var (
		chunks []domain.Document
		buf    strings.Builder
		size   int
	)
	flush := func() {
		chunks = append(chunks, domain.Document{
			Filename: fmt.Sprintf("%s (part %d)", doc.Filename, len(chunks)+1),
			Content:  buf.String(),
		})
		buf.Reset()
		size = 0
	}

	for _, word := range strings.Fields(doc.Content) {
		n := utf8.RuneCountInString(word)
		if size > 0 && size+1+n > maxChars {
			flush()
		}
		if size > 0 {
			buf.WriteByte(' ')
			size++
		}
		buf.WriteString(word)
		size += n
	}
	if size > 0 {
		flush()
	}
	if len(chunks) == 0 {
		// Whitespace-only content longer than the limit.
		return []domain.Document{{Filename: fmt.Sprintf("%s (part 1)", doc.Filename)}}
	}
	return chunks
}

// ChunkAll applies Chunk to every document, preserving order.
func ChunkAll(docs []domain.Document, maxChars int) []domain.Document {
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, Chunk(d, maxChars)...)
	}
	return out
}
