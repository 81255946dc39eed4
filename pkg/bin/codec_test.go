package bin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt32RoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 2147483647, -2147483648, 42}
	for _, v := range cases {
		assert.Equal(t, v, BytesToInt32(Int32ToBytes(v)))
	}
}

func TestInt64RoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 9223372036854775807, -9223372036854775808}
	for _, v := range cases {
		assert.Equal(t, v, BytesToInt64(Int64ToBytes(v)))
	}
}

func TestUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 18446744073709551615, 1<<32 | 7}
	for _, v := range cases {
		assert.Equal(t, v, BytesToUint64(Uint64ToBytes(v)))
	}
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "alice", "a UTF-8 string: éèê"}
	for _, v := range cases {
		encoded := StringToBytes(v)
		got, n := BytesToString(encoded)
		assert.Equal(t, v, got)
		assert.Equal(t, len(encoded), n)
	}
}
