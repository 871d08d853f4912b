// Package chunk splits source text into pieces small enough for one
// generation request.
package chunk

import "strings"

// DefaultSize is the chunk size used when none is configured
const DefaultSize = 2000

// Split packs whitespace-separated words into chunks of at most size bytes,
// joined by single spaces. A word longer than size becomes its own chunk.
func Split(text string, size int) []string {
	if size <= 0 {
		size = DefaultSize
	}

	var chunks []string
	var cur strings.Builder

	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > size {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}

	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
