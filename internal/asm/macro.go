package asm

import (
	"strings"
)

// paramMacro is a DEFINEX macro: invoking "[tag] a b c" substitutes a,
// b, c for params in template, word for word (spec.md section 4.3).
type paramMacro struct {
	params   []string
	template string
}

// preprocessor tracks DEFINE/DEFINEX declarations while walking the
// source top to bottom. Expansion order is reverse-declaration only in
// the sense that a later DEFINE shadows an earlier one of the same
// name for every line after it; lines already expanded are not
// revisited (spec.md section 4.3).
type preprocessor struct {
	simple map[string]string
	params map[string]paramMacro
}

func newPreprocessor() *preprocessor {
	return &preprocessor{simple: map[string]string{}, params: map[string]paramMacro{}}
}

// handleDeclaration recognizes a DEFINE/DEFINEX declaration line and
// records it, returning true if line was such a declaration (and
// should not be emitted as code).
func (p *preprocessor) handleDeclaration(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "DEFINE":
		if len(fields) < 2 {
			return true
		}
		name := fields[1]
		repl := strings.TrimSpace(strings.TrimPrefix(line, "DEFINE "+name))
		p.simple[name] = repl
		return true
	case "DEFINEX":
		rest := strings.TrimSpace(strings.TrimPrefix(line, "DEFINEX"))
		if !strings.HasPrefix(rest, "(") {
			return true
		}
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return true
		}
		header := rest[1:end]
		template := strings.TrimSpace(rest[end+1:])
		parts := strings.Split(header, ";")
		if len(parts) == 0 {
			return true
		}
		tag := strings.TrimSpace(parts[0])
		var params []string
		for _, pr := range parts[1:] {
			pr = strings.TrimSpace(pr)
			pr = strings.TrimPrefix(pr, "?")
			if pr != "" {
				params = append(params, pr)
			}
		}
		p.params[tag] = paramMacro{params: params, template: template}
		return true
	}
	return false
}

// expand applies every macro substitution to line until a pass makes
// no further change, matching spec.md's "later expansions see earlier
// -expanded text".
func (p *preprocessor) expand(line string) string {
	for i := 0; i < 32; i++ {
		next := p.expandParamMacros(line)
		next = p.expandSimpleMacros(next)
		if next == line {
			return next
		}
		line = next
	}
	return line
}

func (p *preprocessor) expandSimpleMacros(line string) string {
	for name, repl := range p.simple {
		line = strings.ReplaceAll(line, "["+name+"]", repl)
	}
	return line
}

func (p *preprocessor) expandParamMacros(line string) string {
	fields := strings.Fields(line)
	for i, f := range fields {
		tag := strings.TrimSuffix(strings.TrimPrefix(f, "["), "]")
		if !strings.HasPrefix(f, "[") || !strings.HasSuffix(f, "]") {
			continue
		}
		m, ok := p.params[tag]
		if !ok {
			continue
		}
		if i+1+len(m.params) > len(fields) {
			continue
		}
		args := fields[i+1 : i+1+len(m.params)]
		text := m.template
		for j, pname := range m.params {
			text = replaceWord(text, pname, args[j])
		}
		out := append([]string{}, fields[:i]...)
		out = append(out, text)
		out = append(out, fields[i+1+len(m.params):]...)
		return strings.Join(out, " ")
	}
	return line
}

// replaceWord substitutes whole-word occurrences of name in s with
// val, so a parameter named "p1" doesn't also match inside "p10".
func replaceWord(s, name, val string) string {
	var out strings.Builder
	for i := 0; i < len(s); {
		idx := strings.Index(s[i:], name)
		if idx < 0 {
			out.WriteString(s[i:])
			break
		}
		start := i + idx
		end := start + len(name)
		before := byte(' ')
		if start > 0 {
			before = s[start-1]
		}
		after := byte(' ')
		if end < len(s) {
			after = s[end]
		}
		if isWordByte(before) || isWordByte(after) {
			out.WriteString(s[i : start+1])
			i = start + 1
			continue
		}
		out.WriteString(s[i:start])
		out.WriteString(val)
		i = end
	}
	return out.String()
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
