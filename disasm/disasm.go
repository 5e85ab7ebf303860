// Package disasm renders a container binary back into human-readable
// assembly text, independent of any live virtual machine.
package disasm

import (
	"encoding/binary"
	"fmt"
	"strings"

	"lumi/container"
	"lumi/isa"
)

// ErrUnknownOpcode is returned by Disassemble when it encounters a byte
// that doesn't map to any catalog opcode.
type ErrUnknownOpcode struct {
	Offset int
	Byte   byte
}

func (e *ErrUnknownOpcode) Error() string {
	return fmt.Sprintf("disasm: unrecognized opcode byte 0x%02x at offset 0x%08x", e.Byte, e.Offset)
}

// Disassemble decodes a container binary and returns its code segment
// rendered as one instruction per line, each annotated with its byte
// offset within the container.
func Disassemble(data []byte) (string, error) {
	c, err := container.Decode(data)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "; ro_data: %d bytes\n", len(c.ROData))

	base := container.CodeOffset(len(c.ROData))
	pos := 0
	for pos < len(c.Code) {
		op := isa.FromByte(c.Code[pos])
		if op == isa.IGL {
			return "", &ErrUnknownOpcode{Offset: base + pos, Byte: c.Code[pos]}
		}

		shape := op.Operands()
		length := op.EncodedLen()
		if pos+length > len(c.Code) {
			fmt.Fprintf(&out, "0x%x: %s <truncated>\n", base+pos, op)
			break
		}

		operandBytes := c.Code[pos+1 : pos+length]
		rendered, err := renderOperands(shape, operandBytes)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&out, "0x%x: %s%s\n", base+pos, op, rendered)
		pos += length
	}

	return out.String(), nil
}

func renderOperands(shape []isa.OperandKind, data []byte) (string, error) {
	if len(shape) == 0 {
		return "", nil
	}

	var parts []string
	off := 0
	for _, kind := range shape {
		switch kind {
		case isa.Register, isa.FloatRegister:
			parts = append(parts, fmt.Sprintf("$%d", data[off]))
			off++
		case isa.Byte:
			parts = append(parts, fmt.Sprintf("#%d", data[off]))
			off++
		case isa.Pad:
			off++
		case isa.IntegerImmediate:
			v := int16(binary.LittleEndian.Uint16(data[off : off+2]))
			parts = append(parts, fmt.Sprintf("#%d", v))
			off += 2
		case isa.FloatImmediate:
			v := float64(binary.LittleEndian.Uint16(data[off : off+2]))
			parts = append(parts, fmt.Sprintf("#%g", v))
			off += 2
		case isa.Address:
			v := binary.LittleEndian.Uint16(data[off : off+2])
			parts = append(parts, fmt.Sprintf("@0x%04x", v))
			off += 2
		}
	}

	return " " + strings.Join(parts, " "), nil
}
