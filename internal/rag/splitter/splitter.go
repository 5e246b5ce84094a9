// Package splitter cuts markdown text into overlapping chunks.
//
// Text is split on the first separator that occurs in it. Pieces that are
// still too long are split again with the remaining separators. Small
// neighbouring pieces are then merged back up to the size limit, and each
// chunk carries over whole trailing pieces of the previous one, up to the
// overlap. Separators stay attached to the start of the piece that follows
// them, so a heading always begins its chunk. Lengths are counted in runes.
package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/akolanti/BookRAG/internal/domain/appErrors"
)

// MarkdownSeparators prefers heading boundaries, then paragraphs, lines,
// words and finally single characters.
var MarkdownSeparators = []string{"\n## ", "\n### ", "\n#### ", "\n\n", "\n", " ", ""}

type Splitter struct {
	size       int
	overlap    int
	separators []string
}

func New(size, overlap int, separators ...string) (*Splitter, error) {
	if size <= 0 {
		return nil, appErrors.Validation("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, appErrors.Validation("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	if len(separators) == 0 {
		separators = MarkdownSeparators
	}
	seps := make([]string, len(separators))
	copy(seps, separators)
	// the raw character fallback is what guarantees the size bound
	if seps[len(seps)-1] != "" {
		seps = append(seps, "")
	}
	return &Splitter{size: size, overlap: overlap, separators: seps}, nil
}

// Chunk splits text with the markdown separators.
func Chunk(text string, size, overlap int) ([]string, error) {
	s, err := New(size, overlap)
	if err != nil {
		return nil, err
	}
	return s.Split(text)
}

// Split returns the chunks in source order. Empty or whitespace-only text
// yields no chunks.
func (s *Splitter) Split(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, appErrors.Validation("text is not valid UTF-8")
	}
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	return s.split(text, s.separators), nil
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var chunks, pending []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < s.size {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending)...)
			pending = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending)...)
	}
	return chunks
}

// merge packs pieces into chunks no longer than size, seeding each new chunk
// with the tail pieces of the previous one while they fit in overlap.
func (s *Splitter) merge(pieces []string) []string {
	var chunks, current []string
	total := 0

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > s.size && len(current) > 0 {
			if c := join(current); c != "" {
				chunks = append(chunks, c)
			}
			for total > s.overlap || (total+n > s.size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if c := join(current); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

func splitKeepingSeparator(text, separator string) []string {
	if separator == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, separator)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, separator+p)
	}
	return out
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
