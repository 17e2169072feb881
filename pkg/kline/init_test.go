package kline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitHandshakeSuccess(t *testing.T) {
	ch := newFakeChannel(0x55, 0x8F, 0xFE)

	err := Init(ch, 0x01, nil)
	require.NoError(t, err)

	assert.Equal(t, []byte{0xFF ^ 0x8F}, ch.Written.Bytes())
	assert.False(t, ch.BreakHigh)
	assert.NotEmpty(t, ch.Sleeps)
}

func TestInitHandshakeDiscardsGarbageBeforeSync(t *testing.T) {
	ch := newFakeChannel(0x00, 0x11, 0x55, 0x8F, 0xFE)

	err := Init(ch, 0x01, nil)
	require.NoError(t, err)

	assert.Equal(t, []byte{0xFF ^ 0x8F}, ch.Written.Bytes())
}

func TestInitHandshakeAddressMismatch(t *testing.T) {
	ch := newFakeChannel(0x55, 0x8F, 0x00)

	err := Init(ch, 0x01, nil)
	require.Error(t, err)
}

func TestInitHandshakeTimeout(t *testing.T) {
	ch := newFakeChannel(0x55)

	err := Init(ch, 0x01, nil)
	require.Error(t, err)
}
