package binlogreader

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildQueryEventBody(schema, query string, statusVars []byte) []byte {
	body := make([]byte, 0, 64)
	var buf4 [4]byte
	binary.LittleEndian.PutUint32(buf4[:], 1) // slave_proxy_id
	body = append(body, buf4[:]...)
	binary.LittleEndian.PutUint32(buf4[:], 0) // execution_time
	body = append(body, buf4[:]...)
	body = append(body, byte(len(schema)))
	var buf2 [2]byte
	binary.LittleEndian.PutUint16(buf2[:], 0) // error_code
	body = append(body, buf2[:]...)
	binary.LittleEndian.PutUint16(buf2[:], uint16(len(statusVars)))
	body = append(body, buf2[:]...)
	body = append(body, statusVars...)
	body = append(body, []byte(schema)...)
	body = append(body, 0x00)
	body = append(body, []byte(query)...)
	return body
}

func TestDecodeQueryEvent(t *testing.T) {
	body := buildQueryEventBody("app", "CREATE TABLE t (id INT)", nil)
	e, err := decodeQueryEvent(body)
	require.NoError(t, err)
	require.Equal(t, "app", e.Schema)
	require.Equal(t, "CREATE TABLE t (id INT)", e.Query)
	require.Equal(t, uint32(1), e.SlaveProxyID)
}

func TestDecodeXidEvent(t *testing.T) {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint64(body, 987654)
	e, err := decodeXidEvent(body)
	require.NoError(t, err)
	require.Equal(t, uint64(987654), e.Xid)
}

func TestDecodeIntVarEvent(t *testing.T) {
	body := make([]byte, 9)
	body[0] = 1 // LAST_INSERT_ID_EVENT
	binary.LittleEndian.PutUint64(body[1:], 42)
	e, err := decodeIntVarEvent(body)
	require.NoError(t, err)
	require.Equal(t, uint8(1), e.Type)
	require.Equal(t, uint64(42), e.Value)
}

func TestDecodeUserVarEventNull(t *testing.T) {
	body := make([]byte, 0, 16)
	var buf4 [4]byte
	binary.LittleEndian.PutUint32(buf4[:], 4)
	body = append(body, buf4[:]...)
	body = append(body, []byte("name")...)
	body = append(body, 1) // is_null = true
	e, err := decodeUserVarEvent(body)
	require.NoError(t, err)
	require.Equal(t, "name", e.Name)
	require.True(t, e.IsNull)
}

func TestDecodeExecuteLoadQueryEvent(t *testing.T) {
	qe := buildQueryEventBody("app", "LOAD DATA INFILE 'x' INTO TABLE t", nil)
	var tail [13]byte
	binary.LittleEndian.PutUint32(tail[0:4], 7)   // file_id
	binary.LittleEndian.PutUint32(tail[4:8], 0)   // start_pos
	binary.LittleEndian.PutUint32(tail[8:12], 10) // end_pos
	tail[12] = 1                                  // dup_handling_flags
	body := append(qe, tail[:]...)

	e, err := decodeExecuteLoadQueryEvent(body)
	require.NoError(t, err)
	require.Equal(t, "app", e.Schema)
	require.Equal(t, uint32(7), e.FileID)
	require.Equal(t, uint8(1), e.DupHandlingFlags)
}
