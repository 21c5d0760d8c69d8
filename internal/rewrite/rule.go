package rewrite

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"callspace/internal/source"
)

// callPattern matches an identifier glued to "(". The word boundary before the
// identifier is checked separately because RE2 has no look-behind and its \b
// is ASCII only.
var callPattern = regexp.MustCompile(`[A-Za-z_][\p{L}\p{N}_]*\(`)

// Decision is the outcome of the rule for one identifier-paren pair.
type Decision uint8

const (
	// Insert means a space goes between the identifier and "(".
	Insert Decision = iota
	// KeepKeyword means the identifier is a control keyword.
	KeepKeyword
	// KeepDefinition means the line is definition-like.
	KeepDefinition
)

func (d Decision) String() string {
	switch d {
	case Insert:
		return "insert"
	case KeepKeyword:
		return "keyword"
	case KeepDefinition:
		return "definition"
	default:
		return "unknown"
	}
}

// Match is one identifier directly followed by "(" within a line.
type Match struct {
	Name     string
	Start    int // byte offset of the identifier
	Paren    int // byte offset of "("
	Decision Decision
}

// Edit records one inserted space.
type Edit struct {
	Line uint32 // 1-based; zero when produced for a standalone line
	Col  uint32 // 1-based byte column of "(" in the original line
	Name string
}

func (e Edit) String() string {
	return e.Pos().String() + " " + e.Name
}

// Pos returns the position of the inserted space.
func (e Edit) Pos() source.LineCol {
	return source.LineCol{Line: e.Line, Col: e.Col}
}

// Matches lists every identifier-paren pair of line from left to right along
// with the decision the rule takes for it. Blank lines have no matches.
func Matches(line string) []Match {
	if IsBlank(line) {
		return nil
	}
	locs := callPattern.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	definition := IsDefinitionLine(line)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		start, paren := loc[0], loc[1]-1
		if start > 0 {
			if r, _ := utf8.DecodeLastRuneInString(line[:start]); isIdentRune(r) {
				continue
			}
		}
		m := Match{Name: line[start:paren], Start: start, Paren: paren}
		switch {
		case IsControlKeyword(m.Name):
			m.Decision = KeepKeyword
		case definition:
			m.Decision = KeepDefinition
		default:
			m.Decision = Insert
		}
		matches = append(matches, m)
	}
	return matches
}

// FixLine applies the rule to a single line.
func FixLine(line string) string {
	out, _ := FixLineEdits(line)
	return out
}

// FixLineEdits applies the rule to a single line and reports the inserted
// spaces. The line terminator, if any, is left in place.
func FixLineEdits(line string) (string, []Edit) {
	var edits []Edit
	var b strings.Builder
	last := 0
	for _, m := range Matches(line) {
		if m.Decision != Insert {
			continue
		}
		if edits == nil {
			b.Grow(len(line) + 4)
		}
		col, err := safecast.Conv[uint32](m.Paren + 1)
		if err != nil {
			panic(fmt.Errorf("column overflow: %w", err))
		}
		b.WriteString(line[last:m.Paren])
		b.WriteByte(' ')
		last = m.Paren
		edits = append(edits, Edit{Col: col, Name: m.Name})
	}
	if len(edits) == 0 {
		return line, nil
	}
	b.WriteString(line[last:])
	return b.String(), edits
}

// FixLines applies the rule to every line. The result has the same length and
// order as lines; edits carry 1-based line numbers.
func FixLines(lines []string) ([]string, []Edit) {
	out := make([]string, len(lines))
	var edits []Edit
	for i, line := range lines {
		fixed, lineEdits := FixLineEdits(line)
		out[i] = fixed
		if len(lineEdits) == 0 {
			continue
		}
		lineNo, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line number overflow: %w", err))
		}
		for _, e := range lineEdits {
			e.Line = lineNo
			edits = append(edits, e)
		}
	}
	return out, edits
}
