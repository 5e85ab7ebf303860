// Package container encodes and decodes the on-disk binary format produced
// by the assembler and consumed by the virtual machine: a fixed-size
// header, a read-only data blob, and the executable code that follows it.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderMagic is written at the start of every container and checked by
// the VM before it will run a program.
var HeaderMagic = [4]byte{'L', 'U', 'M', 'I'}

const (
	// HeaderLength is the size in bytes of the magic plus the bulk of the
	// reserved padding. One further transitional byte separates it from the
	// ro_length field, so the on-disk magic+padding run is actually
	// HeaderLength+1 bytes before ro_length begins.
	HeaderLength = 64

	// roLengthFieldSize is the size of the u32 length prefix that follows
	// the header and precedes the read-only data blob.
	roLengthFieldSize = 4

	// headerPadByte fills the reserved bytes between the magic and the
	// ro_length field. Readers never inspect it; the value is kept for
	// byte-compatibility with containers produced by earlier toolchains.
	headerPadByte = 0x11
)

// ErrBadMagic is returned by Decode when the container doesn't start with
// HeaderMagic.
var ErrBadMagic = errors.New("container: bad header magic")

// Container is the decoded form of a container binary: its read-only data
// segment and its executable code.
type Container struct {
	ROData []byte
	Code   []byte
}

// Encode serializes a Container into the bit-exact on-disk layout:
//
//	magic(4) + padding(60) + transitional byte(1) = HeaderLength+1 bytes
//	ro_length (u32 little endian, 4 bytes)
//	ro_data (ro_length bytes)
//	code
func Encode(c Container) []byte {
	out := make([]byte, 0, HeaderLength+1+roLengthFieldSize+len(c.ROData)+len(c.Code))

	header := make([]byte, HeaderLength+1)
	copy(header[0:4], HeaderMagic[:])
	for i := 4; i < len(header); i++ {
		header[i] = headerPadByte
	}
	out = append(out, header...)

	roLen := make([]byte, roLengthFieldSize)
	binary.LittleEndian.PutUint32(roLen, uint32(len(c.ROData)))
	out = append(out, roLen...)

	out = append(out, c.ROData...)
	out = append(out, c.Code...)

	return out
}

// Decode parses a container binary produced by Encode, verifying the
// header magic and splitting the remainder into read-only data and code.
func Decode(data []byte) (Container, error) {
	if len(data) < HeaderLength+1+roLengthFieldSize {
		return Container{}, fmt.Errorf("container: too short to contain a header: %d bytes", len(data))
	}

	var magic [4]byte
	copy(magic[:], data[0:4])
	if magic != HeaderMagic {
		return Container{}, ErrBadMagic
	}

	roFieldStart := HeaderLength + 1
	roLen := binary.LittleEndian.Uint32(data[roFieldStart : roFieldStart+roLengthFieldSize])
	roStart := roFieldStart + roLengthFieldSize
	roEnd := roStart + int(roLen)
	if roEnd > len(data) {
		return Container{}, fmt.Errorf("container: ro_length %d overruns container of size %d", roLen, len(data))
	}

	return Container{
		ROData: data[roStart:roEnd],
		Code:   data[roEnd:],
	}, nil
}

// CodeOffset returns the byte offset of the first code byte within a
// fully-encoded container whose read-only segment is roLength bytes long.
func CodeOffset(roLength int) int {
	return HeaderLength + 1 + roLengthFieldSize + roLength
}
