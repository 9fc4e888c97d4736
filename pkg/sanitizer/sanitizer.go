package sanitizer

import (
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func lower(s string) string {
	return strings.ToLower(s)
}

// NormalizeEmail makes addresses comparable for the uniqueness check.
func NormalizeEmail(email string) string {
	p := Pipeline{
		strings.TrimSpace,
		lower,
	}
	return p.Apply(email)
}

// NormalizeSearchText prepares a free-text query for a case-insensitive
// substring match.
func NormalizeSearchText(text string) string {
	p := Pipeline{
		TrimAndNormalize,
		lower,
	}
	return p.Apply(text)
}

// NormalizeOptional applies strategy to *s in place. nil is left alone.
func NormalizeOptional(s *string, strategy Strategy) {
	if s == nil {
		return
	}
	*s = strategy(*s)
}
