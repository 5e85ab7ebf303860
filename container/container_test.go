package container_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumi/container"
)

func TestEncodeWritesMagicAndLength(t *testing.T) {
	bin := container.Encode(container.Container{
		ROData: []byte{1, 2, 3, 4},
		Code:   []byte{0x05},
	})

	assert.Equal(t, []byte("LUMI"), bin[0:4])
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(bin[container.HeaderLength+1:container.HeaderLength+1+4]))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := container.Container{
		ROData: []byte{9, 9, 9},
		Code:   []byte{1, 2, 3, 4, 5},
	}
	bin := container.Encode(in)

	out, err := container.Decode(bin)
	require.NoError(t, err)
	assert.Equal(t, in.ROData, out.ROData)
	assert.Equal(t, in.Code, out.Code)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	bin := container.Encode(container.Container{})
	bin[0] = 'X'

	_, err := container.Decode(bin)
	assert.ErrorIs(t, err, container.ErrBadMagic)
}

func TestDecodeRejectsTruncatedContainer(t *testing.T) {
	_, err := container.Decode([]byte{'L', 'U', 'M', 'I'})
	require.Error(t, err)
}

func TestDecodeRejectsOverrunROLength(t *testing.T) {
	bin := container.Encode(container.Container{})
	// Claim a read-only segment far larger than what actually follows.
	binary.LittleEndian.PutUint32(bin[container.HeaderLength+1:], 1<<20)

	_, err := container.Decode(bin)
	require.Error(t, err)
}

func TestCodeOffsetAccountsForHeaderAndROLength(t *testing.T) {
	assert.Equal(t, container.HeaderLength+1+4, container.CodeOffset(0))
	assert.Equal(t, container.HeaderLength+1+4+10, container.CodeOffset(10))
}
