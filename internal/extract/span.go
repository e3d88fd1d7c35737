package extract

import (
	"fmt"
	"strings"
)

// Span is a resolved substring of a document text
type Span struct {
	Text       string
	Length     int // Characters (runes)
	TokenCount int // Whitespace-delimited chunks
}

// SpanResolver resolves character offsets against one text buffer.
// Offsets count Unicode code points, which is how CAS exports address the sofa.
type SpanResolver struct {
	runes []rune
}

// NewSpanResolver creates a resolver for text
func NewSpanResolver(text string) *SpanResolver {
	return &SpanResolver{runes: []rune(text)}
}

// Len returns the text length in characters
func (r *SpanResolver) Len() int {
	return len(r.runes)
}

// Resolve returns the substring [begin, end) with its derived measures.
// Offsets outside the text, or begin > end, yield ErrMalformedSpan.
func (r *SpanResolver) Resolve(begin, end int) (Span, error) {
	if begin < 0 || end < 0 || begin > end || end > len(r.runes) {
		return Span{}, fmt.Errorf("%w: [%d,%d) against text of length %d", ErrMalformedSpan, begin, end, len(r.runes))
	}

	text := string(r.runes[begin:end])
	return Span{
		Text:       text,
		Length:     end - begin,
		TokenCount: CountTokens(text),
	}, nil
}

// Resolve is a one-shot helper around SpanResolver
func Resolve(text string, begin, end int) (Span, error) {
	return NewSpanResolver(text).Resolve(begin, end)
}

// CountTokens counts whitespace-delimited chunks; an empty or blank string has none
func CountTokens(s string) int {
	return len(strings.Fields(s))
}
