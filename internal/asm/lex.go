package asm

import "strings"

// splitLines breaks a source blob into logical lines: lines terminate
// on '\n' or ';' (spec.md section 6), except inside a double-quoted
// string, where both are literal characters. A ';' inside parentheses
// (the "DEFINEX (tag;?p1;?p2)" header) is also literal; a '\n' always
// ends the line.
func splitLines(src string) []string {
	var lines []string
	var cur strings.Builder
	inString := false
	depth := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"' && (i == 0 || src[i-1] != '\\'):
			inString = !inString
			cur.WriteByte(c)
		case (c == '\n' || (c == ';' && depth == 0)) && !inString:
			lines = append(lines, cur.String())
			cur.Reset()
			depth = 0
		case c == '(' && !inString:
			depth++
			cur.WriteByte(c)
		case c == ')' && !inString && depth > 0:
			depth--
			cur.WriteByte(c)
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// stripComment removes a trailing "// ..." line comment, respecting
// double-quoted strings.
func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '"' && (i == 0 || line[i-1] != '\\') {
			inString = !inString
		}
		if !inString && c == '/' && i+1 < len(line) && line[i+1] == '/' {
			return line[:i]
		}
	}
	return line
}

// tokenize splits a line on whitespace and commas, keeping
// double-quoted strings intact as single tokens (including the
// quotes, so the encoder can tell a string literal from a bare word).
func tokenize(line string) []string {
	var toks []string
	var cur strings.Builder
	inString := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			cur.WriteByte(c)
			if i == 0 || line[i-1] != '\\' {
				inString = !inString
				if !inString {
					flush()
				}
			}
		case inString:
			cur.WriteByte(c)
		case c == ' ' || c == '\t' || c == ',':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return toks
}
