package asm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cursedvm/internal/code"
	"cursedvm/internal/diag"
)

// Assembler holds the state of one assembly pass: the two output
// objects, the active one directives/instructions emit into, and the
// counters used to auto-name hoisted string/float constants.
type Assembler struct {
	Text   *Object
	RData  *Object
	active *Object

	pre *preprocessor

	strCount int
	fltCount int

	line             int
	lastWasSEligible bool
}

// Assemble runs the full pipeline over a UTF-8 source blob: strip
// comments, apply the macro preprocessor, tokenize and encode each
// line, and return the resulting text and rodata objects (spec.md
// section 4.3).
func Assemble(src string) (text, rdata *Object, err error) {
	a := &Assembler{
		Text:  newObject(),
		RData: newObject(),
		pre:   newPreprocessor(),
	}
	a.active = a.Text

	for lineNo, raw := range splitLines(src) {
		a.line = lineNo + 1
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if a.pre.handleDeclaration(line) {
			continue
		}
		line = a.pre.expand(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := a.assembleLine(line); err != nil {
			return nil, nil, err
		}
	}
	return a.Text, a.RData, nil
}

func (a *Assembler) fault(format string, args ...any) error {
	return diag.NewAt(diag.LinkError, a.line, format, args...)
}

func (a *Assembler) assembleLine(line string) error {
	toks := tokenize(line)
	if len(toks) == 0 {
		return nil
	}

	// A trailing colon on the first token declares a label at the
	// current offset of the currently active object.
	if strings.HasSuffix(toks[0], ":") {
		name := strings.TrimSuffix(toks[0], ":")
		if name == "" {
			return a.fault("empty label")
		}
		if _, dup := a.active.Labels[name]; dup {
			return a.fault("duplicate label %q", name)
		}
		a.active.Labels[name] = len(a.active.Words)
		toks = toks[1:]
		if len(toks) == 0 {
			return nil
		}
	}

	// A directive between an instruction and "ipush" breaks the
	// "immediately after" requirement.
	if strings.HasPrefix(toks[0], ".") {
		a.lastWasSEligible = false
	}

	switch toks[0] {
	case ".text":
		a.active = a.Text
		return nil
	case ".rodata":
		a.active = a.RData
		return nil
	case ".int":
		return a.directiveInt(toks[1:])
	case ".float":
		return a.directiveFloat(toks[1:])
	case ".ptr":
		return a.directiveInt(toks[1:])
	case ".utf8", ".string", ".str":
		return a.directiveString(toks[1:])
	case "ipush":
		return a.directiveIpush(toks[1:])
	}

	enc, ok := lookupMnemonic(toks[0])
	if !ok {
		return a.fault("unrecognized mnemonic %q", toks[0])
	}
	return a.encodeInstruction(enc, toks[1:])
}

// ---- directives ----

func (a *Assembler) directiveInt(args []string) error {
	if len(args) != 1 {
		return a.fault(".int takes exactly one argument")
	}
	raw, reloc, err := a.resolveImmOrReloc(args[0])
	if err != nil {
		return err
	}
	site := a.active.emit(raw)
	if reloc != nil {
		reloc.Site = site
		a.active.Relocs = append(a.active.Relocs, *reloc)
	}
	return nil
}

func (a *Assembler) directiveFloat(args []string) error {
	if len(args) != 1 {
		return a.fault(".float takes exactly one argument")
	}
	f, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return a.fault("malformed float literal %q", args[0])
	}
	a.active.emit(math.Float32bits(float32(f)))
	return nil
}

func (a *Assembler) directiveString(args []string) error {
	if len(args) != 1 {
		return a.fault(".utf8/.string/.str takes exactly one argument")
	}
	s, err := unquote(args[0])
	if err != nil {
		return a.fault("%s", err)
	}
	emitPaddedString(a.active, s)
	return nil
}

// directiveIpush implements the "ipush" pseudo-mnemonic: legal only
// immediately after an instruction whose encoding declared S
// meaningful. It rewrites that prior word: sets S and replaces the low
// 16 bits with the argument, acting as a deferred IRS push (spec.md
// section 4.3).
func (a *Assembler) directiveIpush(args []string) error {
	if len(args) != 1 {
		return a.fault("ipush takes exactly one argument")
	}
	if len(a.active.Words) == 0 || !a.lastWasSEligible {
		return a.fault("ipush must immediately follow an instruction whose encoding declares S meaningful")
	}
	idx := len(a.active.Words) - 1
	raw, reloc, err := a.resolveImmOrReloc(args[0])
	if err != nil {
		return err
	}
	word := a.active.Words[idx]
	word |= 1 << 27
	word = word&^0xFFFF | raw&0xFFFF
	a.active.Words[idx] = word
	if reloc != nil {
		reloc.Site = idx
		a.active.Relocs = append(a.active.Relocs, *reloc)
	}
	a.lastWasSEligible = false
	return nil
}

// ---- instruction encoding ----

func (a *Assembler) encodeInstruction(enc encoding, args []string) error {
	if len(args) != len(enc.args) {
		return a.fault("wrong argument count: got %d, want %d", len(args), len(enc.args))
	}

	var word uint32
	word |= uint32(enc.class&0xF) << 28
	if enc.s {
		word |= 1 << 27
	}
	word |= uint32(enc.c0&0x7) << 24
	word |= uint32(enc.c1&0x7) << 21

	usedR0, usedR1, usedR2, usedImm := false, false, false, false
	var immReloc *Reloc
	var immVal uint32

	for i, sl := range enc.args {
		tok := args[i]
		switch sl {
		case slotReg0:
			r, err := a.resolveReg(tok)
			if err != nil {
				return err
			}
			word |= uint32(r&0x1F) << 16
			usedR0 = true
		case slotReg1:
			r, err := a.resolveReg(tok)
			if err != nil {
				return err
			}
			word |= uint32(r&0x1F) << 8
			usedR1 = true
		case slotReg2:
			r, err := a.resolveReg(tok)
			if err != nil {
				return err
			}
			word |= uint32(r & 0x1F)
			usedR2 = true
		case slotImm:
			raw, reloc, err := a.resolveImmOrReloc(tok)
			if err != nil {
				return err
			}
			immVal = raw
			immReloc = reloc
			usedImm = true
		}
	}

	if usedImm {
		word = word&^0xFFFF | immVal&0xFFFF
	}

	// Substrate: positions in the 21-bit argument area not bound by an
	// operand copy the previous emitted word rotated left by one,
	// preserved byte for byte per spec.md section 9.
	var substrateMask uint32
	if !usedR0 {
		substrateMask |= 0x1F << 16
	}
	if !usedImm {
		if !usedR1 {
			substrateMask |= 0x1F << 8
		}
		if !usedR2 {
			substrateMask |= 0x1F
		}
		substrateMask |= 0x7 << 13 // c2
		substrateMask |= 0x7 << 5  // c3
	}
	rotated := rotl32(a.active.last(), 1)
	word |= rotated & substrateMask

	site := a.active.emit(word)
	if immReloc != nil {
		immReloc.Site = site
		a.active.Relocs = append(a.active.Relocs, *immReloc)
	}
	a.lastWasSEligible = enc.sElig
	return nil
}

func rotl32(w uint32, n uint) uint32 {
	n &= 31
	return w<<n | w>>(32-n)
}

// resolveReg parses a "$"-prefixed register token: either a decimal
// index or one of the fixed symbolic names.
func (a *Assembler) resolveReg(tok string) (int, error) {
	if !strings.HasPrefix(tok, "$") {
		return 0, a.fault("expected a register operand, got %q", tok)
	}
	name := tok[1:]
	if idx, ok := code.RegisterNames[strings.ToUpper(name)]; ok {
		return idx, nil
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 || n >= code.NumRegisters {
		return 0, a.fault("invalid register %q", tok)
	}
	return n, nil
}

// resolveImmOrReloc parses a "#"-prefixed decimal immediate, a
// "&"/"^"-prefixed relocation against a label, or a quoted string /
// "F#"-float literal that gets hoisted into rodata and replaced by an
// absolute relocation. It returns the raw word
// to emit now (0 when the true value is only known at link time) and,
// when the operand is a relocation, the Reloc to register (its Site
// field is filled in by the caller once the word's final offset is
// known).
func (a *Assembler) resolveImmOrReloc(tok string) (uint32, *Reloc, error) {
	switch {
	case strings.HasPrefix(tok, "#"):
		n, err := strconv.ParseInt(tok[1:], 10, 64)
		if err != nil {
			return 0, nil, a.fault("invalid immediate %q", tok)
		}
		return uint32(int32(n)), nil, nil
	case strings.HasPrefix(tok, "&"):
		return 0, &Reloc{Target: tok[1:], Kind: RelocAbsolute, Line: a.line}, nil
	case strings.HasPrefix(tok, "^"):
		return 0, &Reloc{Target: tok[1:], Kind: RelocRelative, Line: a.line}, nil
	case strings.HasPrefix(tok, "\""):
		s, err := unquote(tok)
		if err != nil {
			return 0, nil, a.fault("%s", err)
		}
		label := fmt.Sprintf("__str%d", a.strCount)
		a.strCount++
		a.RData.Labels[label] = len(a.RData.Words)
		emitPaddedString(a.RData, s)
		return 0, &Reloc{Target: label, Kind: RelocAbsolute, Line: a.line}, nil
	case strings.HasPrefix(tok, "F#"):
		f, err := strconv.ParseFloat(tok[2:], 32)
		if err != nil {
			return 0, nil, a.fault("invalid float literal %q", tok)
		}
		label := fmt.Sprintf("__flt%d", a.fltCount)
		a.fltCount++
		a.RData.Labels[label] = len(a.RData.Words)
		a.RData.emit(math.Float32bits(float32(f)))
		return 0, &Reloc{Target: label, Kind: RelocAbsolute, Line: a.line}, nil
	default:
		return 0, nil, a.fault("invalid operand %q", tok)
	}
}

func unquote(tok string) (string, error) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", fmt.Errorf("unterminated string literal %q", tok)
	}
	body := tok[1 : len(tok)-1]
	var out strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			default:
				out.WriteByte(body[i])
			}
			continue
		}
		out.WriteByte(body[i])
	}
	return out.String(), nil
}

// emitPaddedString writes s's UTF-8 bytes one per word, low byte
// populated and the rest zero, terminated by a single all-zero word.
// vm.readCString walks word memory exactly this way: one ReadRaw per
// character, stopping at the first zero word (spec.md section 4.3).
func emitPaddedString(obj *Object, s string) {
	for i := 0; i < len(s); i++ {
		obj.emit(uint32(s[i]))
	}
	obj.emit(0)
}
