// Package token provides source positions and spans shared by the front-end.
// The lexer and parser are external collaborators; this package only defines
// the coordinates they hand to the semantic pass for error reporting.
package token

import "fmt"

// Position is a point in a source file. Lines and columns are 1-based;
// Offset is the 0-based byte offset into the file.
type Position struct {
	Line   int
	Column int
	Offset int
}

// IsValid reports whether the position refers to an actual source location.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range of source text within a single file.
type Span struct {
	File  string
	Start Position
	End   Position
}

// NewSpan builds a span covering [start, end) in the given file.
func NewSpan(file string, start, end Position) Span {
	return Span{File: file, Start: start, End: end}
}

// Pos returns the starting position of the span.
func (s Span) Pos() Position {
	return s.Start
}

func (s Span) String() string {
	if s.File == "" {
		return s.Start.String()
	}
	return fmt.Sprintf("%s:%s", s.File, s.Start)
}

// Merge returns the smallest span covering both s and other.
// Both spans must belong to the same file.
func (s Span) Merge(other Span) Span {
	merged := s
	if other.Start.Offset < s.Start.Offset {
		merged.Start = other.Start
	}
	if other.End.Offset > s.End.Offset {
		merged.End = other.End
	}
	return merged
}
