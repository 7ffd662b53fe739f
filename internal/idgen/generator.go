package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// now is a test seam for the timestamp source.
var now = func() int64 { return time.Now().UnixMicro() }

// Generator produces identifiers from the following 18-byte sequence:
//
//	|XX XX XX XX XX XX XX XX XX XX XX XX XX XX XX XX XX XX |
//	|--------------------|-----------|---------------------|
//	|   Random Number    | Proc Tag  | Timestamp (micros)  |
//	|     (7 bytes)      | (4 bytes) |      (7 bytes)      |
//
// The proc tag is a random uint32 fixed at construction time, one Generator
// per worker goroutine. Identifiers are not resumable or predictable across
// processes. The top bits of the first byte are forced so that the encoded
// output always has the same width; the leading symbols, which can only take
// a few values, are then stripped.
type Generator struct {
	tag uint32
}

// NewGenerator returns a Generator with a fresh random proc tag.
func NewGenerator() *Generator {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return &Generator{tag: binary.BigEndian.Uint32(buf[:])}
}

// Tag returns the generator's proc tag.
func (g *Generator) Tag() uint32 {
	return g.tag
}

func (g *Generator) fill() []byte {
	buf := make([]byte, 18)
	_, _ = rand.Read(buf[:7])
	binary.BigEndian.PutUint32(buf[7:11], g.tag)

	ts := uint64(now())
	for i := 0; i < 7; i++ {
		buf[11+i] = byte(ts >> ((6 - i) * 8))
	}

	return buf
}

// NewID returns a 27-symbol base35 identifier. The first byte is forced to
// 0xe0 or above so the raw encoding is always 29 symbols; the two leading
// symbols are stripped.
func (g *Generator) NewID() string {
	buf := g.fill()
	buf[0] |= 0xe0

	s := Base35.Encode(buf)
	return s[2:]
}

// NewID58 returns a 24-symbol base58 identifier. The high bit of the first
// byte is forced so the raw encoding is always 25 symbols; the leading symbol
// is stripped.
func (g *Generator) NewID58() string {
	buf := g.fill()
	buf[0] |= 0x80

	s := Base58.Encode(buf)
	return s[1:]
}
