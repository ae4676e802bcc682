package binlogreader

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTableMapEventBody constructs a minimal TABLE_MAP_EVENT body (no
// optional FULL-metadata block) for an int column followed by a varchar(100)
// column, matching what binlog_row_metadata=MINIMAL actually writes on the
// wire: no column names, no charset, no enum/set values.
func buildTableMapEventBody(tableID uint64, schema, table string) []byte {
	body := make([]byte, 0, 64)
	var id6 [8]byte
	binary.LittleEndian.PutUint64(id6[:], tableID)
	body = append(body, id6[:6]...)
	body = append(body, 0, 0) // flags

	body = append(body, byte(len(schema)))
	body = append(body, []byte(schema)...)
	body = append(body, 0x00)

	body = append(body, byte(len(table)))
	body = append(body, []byte(table)...)
	body = append(body, 0x00)

	body = append(body, 2) // column_count = 2 (lenenc, fits in 1 byte)
	body = append(body, byte(TypeLong), byte(TypeVarchar))

	body = append(body, 2) // metadata_length = 2 (just the varchar meta)
	var meta2 [2]byte
	binary.LittleEndian.PutUint16(meta2[:], 100)
	body = append(body, meta2[:]...)

	body = append(body, 0) // null bitmap: ceil(2/8)=1 byte, none nullable
	return body
}

func TestDecodeTableMapEvent(t *testing.T) {
	body := buildTableMapEventBody(99, "app", "users")
	e, err := decodeTableMapEvent(body)
	require.NoError(t, err)
	require.Equal(t, uint64(99), e.TableID)
	require.Equal(t, "app", e.SchemaName)
	require.Equal(t, "users", e.TableName)
	require.Len(t, e.Columns, 2)
	require.Equal(t, TypeLong, e.Columns[0].Type)
	require.Equal(t, TypeVarchar, e.Columns[1].Type)
	require.Equal(t, uint16(100), e.Columns[1].Meta)
	require.False(t, e.Columns[0].Nullable)
}
