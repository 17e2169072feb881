package bcb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x01, 0x02, 0x03, 0x04},
		repeat(0xAA, 600),
		append(repeat(0x00, 10), []byte{1, 2, 3, 4, 5}...),
		{0x11},
	}
	for _, data := range cases {
		consumed, compressed := Compress(data, 256)
		require.LessOrEqual(t, len(compressed), 256)
		got, err := Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, data[:consumed], got)
	}
}

func TestCompressRespectsMaxOutput(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i)
	}
	for _, max := range []int{5, 16, 64, 128} {
		_, out := Compress(data, max)
		assert.LessOrEqual(t, len(out), max)
	}
}

func TestCompressLongRepeatSingleBlock(t *testing.T) {
	data := repeat(0xAA, 600)
	consumed, out := Compress(data, 126)
	require.Equal(t, 600, consumed)
	require.Equal(t, []byte{0x42, 0x58, 0xAA}, out)
}

func TestEncryptInPlaceInvolution(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	buf := append([]byte(nil), data...)
	idx := 0
	EncryptInPlace(buf, Key, &idx)
	idx = 0
	EncryptInPlace(buf, Key, &idx)
	assert.Equal(t, data, buf)
}

func TestEncryptAndCompressFirstBlockPrefix(t *testing.T) {
	data := repeat(0xAA, 600)
	idx := 0
	consumed, block := EncryptAndCompress(128, data, &idx, Key, true)
	require.Equal(t, 600, consumed)
	require.Len(t, block, 5) // 2 prefix + 2 header + 1 repeated byte
	require.Equal(t, 5, idx)

	plain := append([]byte(nil), block...)
	decIdx := 0
	EncryptInPlace(plain, Key, &decIdx)
	assert.Equal(t, []byte{0x1A, 0x01, 0x42, 0x58, 0xAA}, plain)
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
