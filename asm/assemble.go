// Package asm implements the two-pass assembler: turning line-oriented
// source text into a bit-exact container binary (package container) via a
// layout pass that builds the symbol table and an emission pass that
// resolves every label reference and writes instruction bytes.
package asm

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"lumi/container"
	"lumi/isa"
)

// section is one region of the source program introduced by a .data or
// .code/.text directive. Each remembers the code-instruction index at
// which it began, for diagnostics.
type section struct {
	name             string
	startInstruction int
}

// Assemble compiles source text into a container binary. Every recoverable
// problem found along the way is collected into errs rather than aborting
// on the first one; binary is nil if errs is non-empty.
func Assemble(source string) (binary_ []byte, errs []error) {
	lines := stripComments(source)
	if len(lines) == 0 {
		return nil, []error{newErr(ErrInsufficientSections, 0, "source contains no instructions")}
	}

	split := make([]sourceLine, 0, len(lines))
	for _, rl := range lines {
		sl, err := splitLine(rl)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		split = append(split, sl)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	symbols := NewSymbolTable()

	// Pass 1 (layout): walk every line, track which section we're in, and
	// record the offset each label will resolve to. Data directives are
	// laid out into an in-memory read-only blob as we go; the blob offsets
	// recorded for data symbols are relative to the blob's own start, which
	// is the coordinate space PRTS reads in. Code labels use the historical
	// 4-byte instruction stride: the first code instruction is numbered 1,
	// so a label lands on HEADER_LENGTH + 1 + index*4, the instruction's
	// actual byte position in a container with an empty read-only segment.
	roBlob := make([]byte, 0)
	var sections []section
	var cur *section
	currentInstruction := 0
	var codeLines []sourceLine

	for _, sl := range split {
		switch sl.directive {
		case ".data":
			sections = append(sections, section{name: "data", startInstruction: currentInstruction})
			cur = &sections[len(sections)-1]
			continue
		case ".code", ".text":
			sections = append(sections, section{name: "code", startInstruction: currentInstruction})
			cur = &sections[len(sections)-1]
			continue
		}

		switch {
		case cur == nil:
			errs = append(errs, newErr(ErrNoSegmentDeclarationFound, sl.line, "instruction outside of any segment"))

		case cur.name == "data":
			if sl.directive == "" && sl.opcode == "" && len(sl.args) == 0 && sl.label == "" {
				continue
			}
			if err := layoutDataLine(sl, symbols, &roBlob); err != nil {
				errs = append(errs, err)
			}

		case cur.name == "code":
			if sl.directive != "" {
				errs = append(errs, newErr(ErrUnknownDirectiveFound, sl.line, "unrecognized directive in code segment: %s", sl.directive))
				continue
			}
			if sl.label != "" {
				// A label names the next code instruction whether it shares
				// that instruction's line or sits on a line of its own, so
				// it always resolves against currentInstruction+1.
				offset := uint32(container.HeaderLength + 1 + (currentInstruction+1)*isa.InstructionStride)
				if err := symbols.Declare(sl.label, SymbolLabel, offset); err != nil {
					errs = append(errs, newErr(ErrSymbolAlreadyDeclaredKind, sl.line, "%s", err.Error()))
				}
			}
			if sl.opcode != "" {
				if _, ok := isa.FromName(sl.opcode); !ok {
					errs = append(errs, newErr(ErrParseError, sl.line, "%s", (&isa.ErrUnknownMnemonic{Mnemonic: sl.opcode}).Error()))
					continue
				}
				currentInstruction++
				codeLines = append(codeLines, sl)
			}
		}
	}

	if len(sections) != 2 {
		errs = append(errs, newErr(ErrInsufficientSections, 0, "program must declare exactly a .data and a .code segment, found %d", len(sections)))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	// Pass 2 (emission): resolve every operand - label references are
	// looked up in the now-complete symbol table - and emit opcode+operand
	// bytes for each instruction in program order.
	code := make([]byte, 0, len(codeLines)*isa.InstructionStride)
	for _, sl := range codeLines {
		instr, err := parseInstructionLine(sl)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		encoded, err := emitInstruction(instr, symbols)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		code = append(code, encoded...)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return container.Encode(container.Container{ROData: roBlob, Code: code}), nil
}

func layoutDataLine(sl sourceLine, symbols *SymbolTable, blob *[]byte) error {
	offset := uint32(len(*blob))

	switch sl.directive {
	case ".integer":
		if sl.label == "" {
			return newErr(ErrStringConstantDeclaredWithoutLabel, sl.line, ".integer requires a preceding label")
		}
		if len(sl.args) != 1 {
			return newErr(ErrParseError, sl.line, ".integer expects exactly one value")
		}
		v, err := parseIntLiteral(strings.TrimPrefix(sl.args[0], "#"))
		if err != nil {
			return newErr(ErrParseError, sl.line, "invalid .integer value: %s", sl.args[0])
		}
		if err := symbols.Declare(sl.label, SymbolIntegerConst, offset); err != nil {
			return newErr(ErrSymbolAlreadyDeclaredKind, sl.line, "%s", err.Error())
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(v))
		*blob = append(*blob, buf...)
		return nil

	case ".float":
		if sl.label == "" {
			return newErr(ErrStringConstantDeclaredWithoutLabel, sl.line, ".float requires a preceding label")
		}
		if len(sl.args) != 1 {
			return newErr(ErrParseError, sl.line, ".float expects exactly one value")
		}
		fv, ferr := strconv.ParseFloat(strings.TrimPrefix(sl.args[0], "#"), 32)
		if ferr != nil {
			return newErr(ErrParseError, sl.line, "invalid .float value: %s", sl.args[0])
		}
		if err := symbols.Declare(sl.label, SymbolIntegerConst, offset); err != nil {
			return newErr(ErrSymbolAlreadyDeclaredKind, sl.line, "%s", err.Error())
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(fv)))
		*blob = append(*blob, buf...)
		return nil

	case ".asciiz":
		if sl.label == "" {
			return newErr(ErrStringConstantDeclaredWithoutLabel, sl.line, ".asciiz requires a preceding label")
		}
		if len(sl.args) != 1 {
			return newErr(ErrParseError, sl.line, ".asciiz expects exactly one string literal")
		}
		str, err := unquote(sl.args[0])
		if err != nil {
			return newErr(ErrParseError, sl.line, "%s", err.Error())
		}
		if err := symbols.Declare(sl.label, SymbolStringConst, offset); err != nil {
			return newErr(ErrSymbolAlreadyDeclaredKind, sl.line, "%s", err.Error())
		}
		*blob = append(*blob, []byte(str)...)
		*blob = append(*blob, 0)
		return nil

	case "":
		if sl.label != "" {
			return newErr(ErrStringConstantDeclaredWithoutLabel, sl.line, "label %q declared without a following data directive", sl.label)
		}
		if sl.opcode != "" {
			return newErr(ErrParseError, sl.line, "instruction %q found inside a data segment", sl.opcode)
		}
		return nil

	default:
		return newErr(ErrUnknownDirectiveFound, sl.line, "unrecognized data directive: %s", sl.directive)
	}
}

// emitInstruction encodes one fully-parsed instruction, resolving any
// TokLabelRef operands against the symbol table. Pad slots declared in the
// opcode's catalog shape are emitted as zero bytes and have no
// corresponding entry in instr.Operands; whatever the operand slots sum
// to, the encoding is then zero-padded up to the 4-byte stride.
func emitInstruction(instr AssemblyInstruction, symbols *SymbolTable) ([]byte, error) {
	out := make([]byte, 0, isa.InstructionStride)
	out = append(out, byte(instr.Opcode))

	opIdx := 0
	for _, kind := range instr.Opcode.Operands() {
		if kind == isa.Pad {
			out = append(out, 0)
			continue
		}

		tok := instr.Operands[opIdx]
		opIdx++

		switch tok.Kind {
		case TokRegister:
			out = append(out, tok.Reg)

		case TokInteger:
			if kind == isa.Byte {
				out = append(out, byte(tok.Int))
				continue
			}
			// Only the low 16 bits of an integer literal ever reach the
			// wire; the VM's LOAD/CLOOP handlers read no more than that.
			buf := make([]byte, 2)
			binary.LittleEndian.PutUint16(buf, uint16(tok.Int))
			out = append(out, buf...)

		case TokFloat:
			buf := make([]byte, 2)
			binary.LittleEndian.PutUint16(buf, uint16(tok.Float))
			out = append(out, buf...)

		case TokLabelRef:
			sym, ok := symbols.Lookup(tok.Label)
			if !ok {
				return nil, newErr(ErrParseError, instr.Line, "undefined symbol: %s", tok.Label)
			}
			buf := make([]byte, 2)
			binary.LittleEndian.PutUint16(buf, uint16(sym.Offset))
			out = append(out, buf...)

		default:
			return nil, newErr(ErrParseError, instr.Line, "unresolved operand token in %s", instr.Opcode)
		}
	}

	for len(out) < isa.InstructionStride {
		out = append(out, 0)
	}
	return out, nil
}
