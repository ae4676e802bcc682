package binlogreader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// These exercise Column.decodeValue directly against hand-built wire bytes,
// the offline equivalent of the teacher's types_test.go (which decoded
// values from a live server's binlog stream via testInsert/Dial). This
// package never opens a live replication connection, so its value-decoding
// tests build the wire bytes by hand instead.

func decodeOne(t *testing.T, col Column, body []byte) interface{} {
	t.Helper()
	c := newCursor(body)
	v, err := col.decodeValue(c)
	require.NoError(t, err)
	return v
}

func TestDecodeValueIntegerTypes(t *testing.T) {
	require.Equal(t, int8(-23), decodeOne(t, Column{Type: TypeTiny}, []byte{0xe9}))
	require.Equal(t, uint8(23), decodeOne(t, Column{Type: TypeTiny, Unsigned: true}, []byte{23}))

	require.Equal(t, int16(-23), decodeOne(t, Column{Type: TypeShort}, []byte{0xe9, 0xff}))
	require.Equal(t, uint16(32767), decodeOne(t, Column{Type: TypeShort, Unsigned: true}, []byte{0xff, 0x7f}))

	require.Equal(t, int32(-23), decodeOne(t, Column{Type: TypeInt24}, []byte{0xe9, 0xff, 0xff}))
	require.Equal(t, uint32(8388607), decodeOne(t, Column{Type: TypeInt24, Unsigned: true}, []byte{0xff, 0xff, 0x7f}))

	require.Equal(t, int32(-23), decodeOne(t, Column{Type: TypeLong}, []byte{0xe9, 0xff, 0xff, 0xff}))
	require.Equal(t, uint32(4294967295), decodeOne(t, Column{Type: TypeLong, Unsigned: true}, []byte{0xff, 0xff, 0xff, 0xff}))

	require.Equal(t, int64(-23), decodeOne(t, Column{Type: TypeLongLong},
		[]byte{0xe9, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}))
	require.Equal(t, uint64(18446744073709551615), decodeOne(t, Column{Type: TypeLongLong, Unsigned: true},
		[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}))
}

func TestDecodeValueVarcharAndString(t *testing.T) {
	body := append([]byte{5}, []byte("hello")...)
	require.Equal(t, "hello", decodeOne(t, Column{Type: TypeVarchar, Meta: 100}, body))
	require.Equal(t, "hello", decodeOne(t, Column{Type: TypeString, Meta: 100}, body))
}

func TestDecodeValueNewDecimal(t *testing.T) {
	// precision=2, scale=0: a single-byte compressed integral-only field.
	// MySQL's new-decimal format flips the sign bit of the first byte to
	// mark a non-negative value, then XORs the whole buffer for negatives.
	col := Column{Type: TypeNewDecimal, Meta: uint16(2) | uint16(0)<<8}
	body := []byte{12 | 0x80}
	require.Equal(t, Decimal("12"), decodeOne(t, col, body))
}

func TestDecodeValueBit(t *testing.T) {
	col := Column{Type: TypeBit, Meta: 5} // 5 bits, high byte (extra whole bytes) = 0
	require.Equal(t, uint64(0b10110), decodeOne(t, col, []byte{0b10110}))
}

func TestDecodeValueEnum(t *testing.T) {
	col := Column{Type: TypeEnum, Meta: 1, Values: []string{"a", "b", "c"}}
	v := decodeOne(t, col, []byte{2})
	require.Equal(t, Enum{Val: 2, Values: []string{"a", "b", "c"}}, v)
	require.Equal(t, "b", v.(Enum).String())
}

func TestDecodeValueSet(t *testing.T) {
	col := Column{Type: TypeSet, Meta: 1, Values: []string{"x", "y", "z"}}
	v := decodeOne(t, col, []byte{0b101})
	require.Equal(t, Set{Val: 0b101, Values: []string{"x", "y", "z"}}, v)
	require.ElementsMatch(t, []string{"x", "z"}, v.(Set).Members())
}

func TestDecodeValueYear(t *testing.T) {
	require.Equal(t, 0, decodeOne(t, Column{Type: TypeYear}, []byte{0}))
	require.Equal(t, 1999, decodeOne(t, Column{Type: TypeYear}, []byte{99}))
	require.Equal(t, 1901, decodeOne(t, Column{Type: TypeYear}, []byte{1}))
}

func TestDecodeValueDate(t *testing.T) {
	year, month, day := uint32(2024), uint32(3), uint32(15)
	v := year*16*32 + month*32 + day
	body := []byte{byte(v), byte(v >> 8), byte(v >> 16)}

	got := decodeOne(t, Column{Type: TypeDate}, body)
	tm := got.(interface{ Year() int })
	require.Equal(t, 2024, tm.Year())
}

func TestDecimalFloat64(t *testing.T) {
	f, err := Decimal("123.45").Float64()
	require.NoError(t, err)
	require.InDelta(t, 123.45, f, 1e-9)
}
