package kwp

import "encoding/binary"

// securityConstant is the feedback value XORed in each round of the
// seed-to-key transform.
const securityConstant = 0x5FBD5DBD

// securityRounds is the fixed number of feedback rounds applied.
const securityRounds = 5

// lockoutCounterAddress is the RAM address of ME7's security-access
// attempt counter.
const lockoutCounterAddress = 0x00380DA8

// lockoutBypassID is the dynamic local identifier used to alias the
// lockout counter for the bypass write.
const lockoutBypassID = 0xF0

// EncryptionKey is the six-byte ASCII key ME7 ECUs use for the BCB XOR
// cipher.
var EncryptionKey = []byte("GEHEIM")

// SecurityKeyFromSeed derives the 4-byte key for a 4-byte challenge seed,
// per the fixed five-round shift/XOR transform, returned big-endian as it
// is transmitted on the wire.
func SecurityKeyFromSeed(seed [4]byte) [4]byte {
	key := binary.BigEndian.Uint32(seed[:])
	for r := 0; r < securityRounds; r++ {
		if key&0x80000000 != 0 {
			key = (key << 1) | 1
			key ^= securityConstant
		} else {
			key <<= 1
		}
	}
	var out [4]byte
	binary.BigEndian.PutUint32(out[:], key)
	return out
}
