package asm

import "fmt"

// AssemblerErrorKind enumerates the recoverable error conditions the
// assembler can hit. Unlike a runtime crash, these are collected across an
// entire source file rather than aborting on the first one, so a caller
// gets the full list of problems in one pass.
type AssemblerErrorKind int

const (
	ErrNoSegmentDeclarationFound AssemblerErrorKind = iota
	ErrStringConstantDeclaredWithoutLabel
	ErrSymbolAlreadyDeclaredKind
	ErrUnknownDirectiveFound
	ErrInsufficientSections
	ErrParseError
	ErrFailedToReadFile
	ErrFailedToWriteBinaryFile
)

func (k AssemblerErrorKind) String() string {
	switch k {
	case ErrNoSegmentDeclarationFound:
		return "no segment declaration found"
	case ErrStringConstantDeclaredWithoutLabel:
		return "string constant declared without a label"
	case ErrSymbolAlreadyDeclaredKind:
		return "symbol already declared"
	case ErrUnknownDirectiveFound:
		return "unknown directive found"
	case ErrInsufficientSections:
		return "insufficient sections"
	case ErrParseError:
		return "parse error"
	case ErrFailedToReadFile:
		return "failed to read file"
	case ErrFailedToWriteBinaryFile:
		return "failed to write binary file"
	default:
		return "unknown assembler error"
	}
}

// AssemblerError pairs an AssemblerErrorKind with the source line it was
// found on and a human-readable detail message.
type AssemblerError struct {
	Kind   AssemblerErrorKind
	Line   int
	Detail string
}

func (e *AssemblerError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func newErr(kind AssemblerErrorKind, line int, format string, args ...any) *AssemblerError {
	return &AssemblerError{Kind: kind, Line: line, Detail: fmt.Sprintf(format, args...)}
}
