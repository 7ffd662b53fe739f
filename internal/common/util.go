package common

import (
	"crypto/rand"
	"encoding/binary"
)

// RandBytes returns size cryptographically random bytes.
func RandBytes(size int) []byte {
	buf := make([]byte, size)
	_, _ = rand.Read(buf)
	return buf
}

// RandUint64 returns a uniformly distributed random uint64. It backs the
// random tag assigned to every request at creation time.
func RandUint64() uint64 {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return binary.BigEndian.Uint64(buf[:])
}

// WipeByteArray zeroes the buffer in place. Callers use it to drop secrets
// (passwords read from the terminal) as soon as they are no longer needed.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
