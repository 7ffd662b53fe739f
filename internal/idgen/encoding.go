// Package idgen produces globally unique, lexicographically orderable request
// and credential identifiers, encoded with big-integer base-N codecs.
package idgen

import (
	"fmt"
	"strings"
)

// Base58 uses the Bitcoin alphabet (no 0, O, I, l).
var Base58 = NewEncoding("123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz", 137)

// Base35 uses lowercase letters and digits without 'l'.
var Base35 = NewEncoding("0123456789abcdefghijkmnopqrstuvwxyz", 156)

// Encoding is a big-integer base-N codec in the style of the trezor base58
// implementation. Leading zero bytes encode as repeated alphabet[0] symbols
// and decode back to zero bytes, so Decode(Encode(b)) == b for any input.
type Encoding struct {
	alphabet string
	// growth is the per-byte output growth factor in hundredths
	// (ceil(log(256)/log(base) * 100)).
	growth    int
	decodeMap [256]int8
}

// NewEncoding builds an Encoding for the given alphabet. The growth factor
// must satisfy growth/100 >= log(256)/log(len(alphabet)).
func NewEncoding(alphabet string, growth int) *Encoding {
	e := &Encoding{alphabet: alphabet, growth: growth}
	for i := range e.decodeMap {
		e.decodeMap[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		e.decodeMap[alphabet[i]] = int8(i)
	}
	return e
}

// Encode returns the base-N representation of data.
func (e *Encoding) Encode(data []byte) string {
	base := uint32(len(e.alphabet))

	zcount := 0
	for zcount < len(data) && data[zcount] == 0 {
		zcount++
	}

	slen := len(data)
	dlen := (slen-zcount)*e.growth/100 + 1
	buf := make([]byte, dlen)

	h := 0
	for i := zcount; i < slen; i++ {
		carry := uint32(data[i])
		j := 0
		for j < h || carry != 0 {
			carry += 256 * uint32(buf[j])
			buf[j] = byte(carry % base)
			carry /= base
			j++
		}
		h = j
	}

	var sb strings.Builder
	sb.Grow(zcount + h)
	for i := 0; i < zcount; i++ {
		sb.WriteByte(e.alphabet[0])
	}
	for i := dlen - h; i < dlen; i++ {
		sb.WriteByte(e.alphabet[buf[dlen-i-1]])
	}

	return sb.String()
}

// Decode reverses Encode. It fails on symbols outside the alphabet.
func (e *Encoding) Decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}

	base := uint32(len(e.alphabet))
	zero := e.alphabet[0]

	zcount := 0
	for zcount < len(s) && s[zcount] == zero {
		zcount++
	}

	size := (len(s)-zcount)*733/1000 + 1
	buf := make([]byte, size)

	high := size
	for i := zcount; i < len(s); i++ {
		d := e.decodeMap[s[i]]
		if d < 0 {
			return nil, fmt.Errorf("invalid symbol %q at position %d", s[i], i)
		}

		carry := uint32(d)
		j := size - 1
		for ; j >= high || carry != 0; j-- {
			carry += base * uint32(buf[j])
			buf[j] = byte(carry & 0xff)
			carry >>= 8
		}
		high = j + 1
	}

	i := 0
	for i < size && buf[i] == 0 {
		i++
	}

	out := make([]byte, zcount+(size-i))
	copy(out[zcount:], buf[i:])
	return out, nil
}
