package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// On-disk encoding, kept bit-for-bit stable: counts, ids and pages are
// 8-byte big-endian unsigned integers; vectors are contiguous little-endian
// float32 bytes; text fields are raw UTF-8.

func encodeInt(n int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

func decodeInt(data []byte) (int, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("integer field is %d bytes, want 8", len(data))
	}
	return int(binary.BigEndian.Uint64(data)), nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}

// decodeString replaces invalid UTF-8 instead of failing, so a corrupted
// content record degrades rather than breaking every read after it.
func decodeString(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
