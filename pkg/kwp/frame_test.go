package kwp

import (
	"testing"

	"github.com/kjdev/kwp2000tool/internal/testchannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequestSecuritySeed(t *testing.T) {
	f := Frame{Service: byte(svcSecurityAccess), Payload: []byte{0x01}}
	got, err := Encode(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x27, 0x01, 0x2A}, got)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frames := []Frame{
		{Service: byte(svcSecurityAccess), Payload: []byte{0x01}},
		{Mode: AddressPhysical, Target: 0x10, Source: 0xF1, Service: byte(svcTesterPresent), Payload: nil},
		{Service: byte(svcTransferData), Payload: make([]byte, 100)},
	}
	for _, f := range frames {
		encoded, err := Encode(f)
		require.NoError(t, err)

		ch := testchannel.New(encoded)
		decoded, err := Decode(ch)
		require.NoError(t, err)

		reencoded, err := Encode(decoded)
		require.NoError(t, err)
		assert.Equal(t, encoded, reencoded)
	}
}

func TestDecodeInvalidChecksum(t *testing.T) {
	ch := testchannel.New([]byte{0x02, 0x27, 0x01, 0x00})
	_, err := Decode(ch)
	assert.ErrorIs(t, err, ErrInvalidChecksum)
}

func TestDecodeUnknownService(t *testing.T) {
	ch := testchannel.New([]byte{0x02, 0xEE, 0x01, 0xF1})
	_, err := Decode(ch)
	assert.ErrorIs(t, err, ErrInvalidService)
}

func TestDecodeTruncated(t *testing.T) {
	ch := testchannel.New([]byte{0x02, 0x27})
	_, err := Decode(ch)
	assert.Error(t, err)
}
