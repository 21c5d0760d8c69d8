package rewrite

import (
	"unicode"
	"unicode/utf8"
)

var controlKeywords = map[string]struct{}{
	"if":     {},
	"for":    {},
	"while":  {},
	"switch": {},
	"catch":  {},
	"return": {},
}

// ControlKeywords returns the identifiers that are never rewritten.
func ControlKeywords() []string {
	return []string{"if", "for", "while", "switch", "catch", "return"}
}

// IsControlKeyword reports whether name is a control-structure keyword.
func IsControlKeyword(name string) bool {
	_, ok := controlKeywords[name]
	return ok
}

// IsDefinitionLine reports whether line looks like the start of a top-level
// declaration: its first character exists and is not whitespace.
func IsDefinitionLine(line string) bool {
	r, size := utf8.DecodeRuneInString(line)
	if size == 0 {
		return false
	}
	return !isSpace(r)
}

// IsBlank reports whether line is empty or whitespace only.
func IsBlank(line string) bool {
	for _, r := range line {
		if !isSpace(r) {
			return false
		}
	}
	return true
}

// isSpace extends unicode.IsSpace with the ASCII file, group, record and
// unit separators, which count as whitespace for indentation.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
