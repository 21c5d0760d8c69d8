// Package rewrite inserts a space between a called identifier and its opening
// parenthesis, line by line.
//
// The decision is a text heuristic, not a parse: a line that starts with a
// non-whitespace character is treated as a definition and left alone, control
// keywords are never touched, and every other identifier directly followed by
// "(" gets a space. Matches inside string and comment literals are rewritten
// too. Multi-line constructs are not understood.
package rewrite
