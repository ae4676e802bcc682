package binlogreader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFDEBody(serverVersion string, headerLengths []byte, algo *ChecksumAlgorithm) []byte {
	body := make([]byte, 0, 2+50+4+1+len(headerLengths)+1)
	body = append(body, 4, 0) // binlog version = 4
	ver := make([]byte, 50)
	copy(ver, serverVersion)
	body = append(body, ver...)
	body = append(body, 0, 0, 0, 0) // create_timestamp
	body = append(body, eventHeaderSize)
	body = append(body, headerLengths...)
	if algo != nil {
		body = append(body, byte(*algo))
	}
	return body
}

func TestDecodeFormatDescriptionEventCRC32(t *testing.T) {
	algo := ChecksumCRC32
	body := buildFDEBody("8.0.34-log", []byte{1, 2, 3}, &algo)
	e, err := decodeFormatDescriptionEvent(body)
	require.NoError(t, err)
	require.Equal(t, uint16(4), e.BinlogVersion)
	require.Contains(t, e.ServerVersion, "8.0.34")
	require.Equal(t, ChecksumCRC32, e.ChecksumAlgorithm)
	require.Equal(t, []byte{1, 2, 3}, e.EventTypeHeaderLengths)
	require.Equal(t, checksumSize, e.checksumLen(nil))
}

func TestDecodeFormatDescriptionEventNoChecksumByte(t *testing.T) {
	body := buildFDEBody("5.1.60-log", []byte{1, 2, 3}, nil)
	e, err := decodeFormatDescriptionEvent(body)
	require.NoError(t, err)
	require.Equal(t, ChecksumUndefined, e.ChecksumAlgorithm)
	require.Equal(t, []byte{1, 2, 3}, e.EventTypeHeaderLengths)

	require.Equal(t, 0, e.checksumLen(nil))
	enabled := true
	require.Equal(t, checksumSize, e.checksumLen(&enabled))
}

func TestDecodeFormatDescriptionEventChecksumNone(t *testing.T) {
	algo := ChecksumNone
	body := buildFDEBody("5.6.10-log", []byte{1, 2, 3}, &algo)
	e, err := decodeFormatDescriptionEvent(body)
	require.NoError(t, err)
	require.Equal(t, ChecksumNone, e.ChecksumAlgorithm)
	require.Equal(t, 0, e.checksumLen(nil))
}
