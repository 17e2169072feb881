package kwp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityKeyFromSeedZero(t *testing.T) {
	key := SecurityKeyFromSeed([4]byte{0x00, 0x00, 0x00, 0x00})
	assert.Equal(t, [4]byte{0x00, 0x00, 0x00, 0x00}, key)
}

func TestSecurityKeyFromSeedFixture(t *testing.T) {
	key := SecurityKeyFromSeed([4]byte{0x12, 0x34, 0x56, 0x78})
	assert.Equal(t, [4]byte{0xF9, 0xF0, 0x74, 0x78}, key)
}
