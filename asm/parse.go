package asm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"lumi/isa"
)

// Strips everything from a ";" to the end of a line before any further
// parsing happens.
var commentPattern = regexp.MustCompile(`;.*`)

var labelDeclPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*:$`)

// rawLine is one non-empty, comment-stripped source line together with its
// 1-based line number for error reporting.
type rawLine struct {
	text string
	line int
}

func stripComments(source string) []rawLine {
	lines := strings.Split(source, "\n")
	out := make([]rawLine, 0, len(lines))
	for i, line := range lines {
		line = commentPattern.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, rawLine{text: line, line: i + 1})
	}
	return out
}

// sourceLine is a raw line split into its label declaration (if any) and
// the remainder: a directive, or an opcode plus operand tokens.
type sourceLine struct {
	label     string
	directive string
	opcode    string
	args      []string
	line      int
}

func splitLine(rl rawLine) (sourceLine, error) {
	text := rl.text
	label := ""

	if idx := strings.Index(text, " "); idx >= 0 {
		first := text[:idx]
		if labelDeclPattern.MatchString(first) {
			label = strings.TrimSuffix(first, ":")
			text = strings.TrimSpace(text[idx+1:])
		}
	} else if labelDeclPattern.MatchString(text) {
		return sourceLine{label: strings.TrimSuffix(text, ":"), line: rl.line}, nil
	}

	if text == "" {
		return sourceLine{label: label, line: rl.line}, nil
	}

	fields := strings.Fields(text)
	head := fields[0]
	rest := fields[1:]

	if strings.HasPrefix(head, ".") {
		return sourceLine{label: label, directive: strings.ToLower(head), args: joinQuoted(rest), line: rl.line}, nil
	}

	return sourceLine{label: label, opcode: strings.ToUpper(head), args: joinQuoted(rest), line: rl.line}, nil
}

// joinQuoted re-joins fields that were split inside a single-quoted string
// literal (e.g. .asciiz 'hello world' would otherwise split on the space).
func joinQuoted(fields []string) []string {
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if strings.HasPrefix(f, "'") && !(len(f) > 1 && strings.HasSuffix(f, "'")) {
			joined := f
			for i++; i < len(fields); i++ {
				joined += " " + fields[i]
				if strings.HasSuffix(fields[i], "'") {
					break
				}
			}
			out = append(out, joined)
			continue
		}
		out = append(out, f)
	}
	return out
}

// parseOperand converts one operand token string into a Token given the
// OperandKind the current opcode position expects. Labels are left
// unresolved (TokLabelRef) for the assembler's second pass to fill in.
func parseOperand(raw string, kind isa.OperandKind, line int) (Token, error) {
	switch kind {
	case isa.Register, isa.FloatRegister:
		// Float registers use the same "$N" syntax as general registers;
		// which file the index selects is decided by the opcode.
		if !strings.HasPrefix(raw, "$") {
			return Token{}, newErr(ErrParseError, line, "expected register operand, got %q", raw)
		}
		n, err := strconv.Atoi(raw[1:])
		if err != nil || n < 0 || n > 31 {
			return Token{}, newErr(ErrParseError, line, "invalid register operand: %q", raw)
		}
		return Token{Kind: TokRegister, Reg: byte(n)}, nil

	case isa.IntegerImmediate:
		if !strings.HasPrefix(raw, "#") {
			return Token{}, newErr(ErrParseError, line, "expected integer immediate operand, got %q", raw)
		}
		v, err := parseIntLiteral(raw[1:])
		if err != nil {
			return Token{}, newErr(ErrParseError, line, "invalid integer immediate: %q", raw)
		}
		return Token{Kind: TokInteger, Int: v}, nil

	case isa.FloatImmediate:
		if !strings.HasPrefix(raw, "#") {
			return Token{}, newErr(ErrParseError, line, "expected float immediate operand, got %q", raw)
		}
		v, err := strconv.ParseFloat(raw[1:], 32)
		if err != nil {
			return Token{}, newErr(ErrParseError, line, "invalid float immediate: %q", raw)
		}
		return Token{Kind: TokFloat, Float: float32(v)}, nil

	case isa.Byte:
		if !strings.HasPrefix(raw, "#") {
			return Token{}, newErr(ErrParseError, line, "expected byte immediate operand, got %q", raw)
		}
		v, err := parseIntLiteral(raw[1:])
		if err != nil || v < 0 || v > 255 {
			return Token{}, newErr(ErrParseError, line, "invalid byte immediate: %q", raw)
		}
		return Token{Kind: TokInteger, Int: v}, nil

	case isa.Address:
		if !strings.HasPrefix(raw, "@") {
			return Token{}, newErr(ErrParseError, line, "expected label reference operand (e.g. @name), got %q", raw)
		}
		return Token{Kind: TokLabelRef, Label: raw[1:]}, nil

	default:
		return Token{}, newErr(ErrParseError, line, "unexpected operand %q for instruction with no operands", raw)
	}
}

func parseIntLiteral(raw string) (int32, error) {
	base := 10
	neg := strings.HasPrefix(raw, "-")
	if neg {
		raw = raw[1:]
	}
	if strings.HasPrefix(raw, "0x") {
		base = 16
		raw = raw[2:]
	}
	v, err := strconv.ParseInt(raw, base, 32)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return int32(v), nil
}

// parseInstructionLine converts a mnemonic and its argument strings into an
// AssemblyInstruction, validating the operand count and shape against the
// catalog entry for the opcode. Pad slots in the catalog shape carry no
// source syntax - the assembler emits them as zero bytes - so they're
// skipped here and don't count against the user-supplied argument count.
func parseInstructionLine(sl sourceLine) (AssemblyInstruction, error) {
	op, ok := isa.FromName(sl.opcode)
	if !ok {
		return AssemblyInstruction{}, newErr(ErrParseError, sl.line, "%s", (&isa.ErrUnknownMnemonic{Mnemonic: sl.opcode}).Error())
	}

	shape := op.Operands()
	wantArgs := 0
	for _, kind := range shape {
		if kind != isa.Pad {
			wantArgs++
		}
	}
	if len(sl.args) != wantArgs {
		return AssemblyInstruction{}, newErr(ErrParseError, sl.line,
			"%s expects %d operands, got %d", op, wantArgs, len(sl.args))
	}

	operands := make([]Token, 0, wantArgs)
	argIdx := 0
	for _, kind := range shape {
		if kind == isa.Pad {
			continue
		}
		tok, err := parseOperand(sl.args[argIdx], kind, sl.line)
		if err != nil {
			return AssemblyInstruction{}, err
		}
		operands = append(operands, tok)
		argIdx++
	}

	return AssemblyInstruction{Opcode: op, Operands: operands, Line: sl.line}, nil
}

func unquote(s string) (string, error) {
	if len(s) < 2 || !strings.HasPrefix(s, "'") || !strings.HasSuffix(s, "'") {
		return "", fmt.Errorf("unterminated string literal: %s", s)
	}
	return s[1 : len(s)-1], nil
}
