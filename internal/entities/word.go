package entities

import (
	"fmt"
	"strings"
)

// Category is a part-of-speech tag attached to a word entry.
type Category string

const (
	CategoryNoun         Category = "N"
	CategoryVerb         Category = "V"
	CategoryAdjective    Category = "ADJ"
	CategoryAdverb       Category = "ADV"
	CategoryPronoun      Category = "PRON"
	CategoryPreposition  Category = "PREP"
	CategoryConjunction  Category = "CONJ"
	CategoryArticle      Category = "ART"
	CategoryNumeral      Category = "NUM"
	CategoryInterjection Category = "INTERJ"
	CategoryAuxVerb      Category = "AUX_V"
	CategoryOnomatopoeia Category = "ONOMATOPOEIA"
	CategoryUnspecified  Category = "UNSPECIFIED"
)

var knownCategories = map[Category]struct{}{
	CategoryNoun:         {},
	CategoryVerb:         {},
	CategoryAdjective:    {},
	CategoryAdverb:       {},
	CategoryPronoun:      {},
	CategoryPreposition:  {},
	CategoryConjunction:  {},
	CategoryArticle:      {},
	CategoryNumeral:      {},
	CategoryInterjection: {},
	CategoryAuxVerb:      {},
	CategoryOnomatopoeia: {},
	CategoryUnspecified:  {},
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := knownCategories[c]
	return ok
}

// ParseCategory converts a category name (case-insensitive) to a Category.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(name)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", name)
	}
	return c, nil
}

// Entry is a single vocabulary item within a word library.
// Term is the lookup key and is unique within one library.
type Entry struct {
	Term       string     `json:"term"`
	Definition string     `json:"definition"`
	Example    string     `json:"example,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// Clone returns a copy of e that shares no memory with it.
func (e Entry) Clone() Entry {
	if len(e.Categories) == 0 {
		e.Categories = nil
		return e
	}
	cats := make([]Category, len(e.Categories))
	copy(cats, e.Categories)
	e.Categories = cats
	return e
}

func (e Entry) HasCategory(c Category) bool {
	for _, have := range e.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// String renders the entry as "term [N, V]: definition (e.g. example)".
func (e Entry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Term)

	if len(e.Categories) > 0 {
		sb.WriteString(" [")
		for i, c := range e.Categories {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(string(c))
		}
		sb.WriteString("]")
	}

	sb.WriteString(": ")
	sb.WriteString(e.Definition)

	if e.Example != "" {
		sb.WriteString(" (e.g. ")
		sb.WriteString(e.Example)
		sb.WriteString(")")
	}

	return sb.String()
}
