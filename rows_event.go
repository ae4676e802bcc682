package binlogreader

import "github.com/pkg/errors"

// Row is one row image: one decoded value per present column, in column
// order. A nil entry means the column was NULL.
type Row []interface{}

// RowChange is one row mutation carried by a ROWS_EVENT. Before is nil for
// an insert, After is nil for a delete; both are set for an update.
type RowChange struct {
	Before Row
	After  Row
}

// RowsEvent is the fully decoded form of any WRITE/UPDATE/DELETE_ROWS_EVENT
// version, resolved against the table schema captured by the preceding
// TABLE_MAP_EVENT for the same table_id.
//
// Grounded on the teacher's rbr.go RowsEvent/nextRow, reworked from a
// pull-based NextRow() API into eager whole-event decoding to match this
// package's "read one complete frame, return one complete DecodedEvent"
// contract (see frame_reader.go).
type RowsEvent struct {
	EventType EventType
	TableID   uint64
	Flags     uint16
	Table     *TableSchema
	Rows      []RowChange
}

const (
	rowsFlagEndOfStatement     uint16 = 0x0001
	rowsFlagNoForeignKeyChecks uint16 = 0x0002
	rowsFlagNoUniqueKeyChecks  uint16 = 0x0004
)

func decodeRowsEvent(body []byte, eventType EventType, table *TableSchema) (RowsEvent, error) {
	c := newCursor(body)
	var e RowsEvent
	e.EventType = eventType
	e.Table = table

	e.TableID = c.int6()
	e.Flags = c.int2()

	// v2 row events carry an extra variable-length header block absent
	// from v0 and v1; it starts with a 2-byte length field that counts
	// itself.
	isV2 := eventType == WRITE_ROWS_EVENTv2 || eventType == UPDATE_ROWS_EVENTv2 || eventType == DELETE_ROWS_EVENTv2
	if isV2 {
		extraLen := int(c.int2())
		if extraLen < 2 {
			return e, errors.Errorf("binlogreader: rows event extra-data length %d too small", extraLen)
		}
		c.skip(extraLen - 2)
	}

	columnCount := int(c.intN())
	if c.err != nil {
		return e, c.err
	}
	presentBefore := readBitmap(c, columnCount)

	isUpdate := eventType.IsUpdateRows()
	var presentAfter []bool
	if isUpdate {
		presentAfter = readBitmap(c, columnCount)
	}
	if c.err != nil {
		return e, c.err
	}

	if table == nil {
		return e, errors.New("binlogreader: rows event references table_id with no known schema")
	}

	for c.more() {
		var change RowChange
		switch eventType {
		case WRITE_ROWS_EVENTv0, WRITE_ROWS_EVENTv1, WRITE_ROWS_EVENTv2:
			row, err := decodeRowImage(c, table.Columns, presentBefore)
			if err != nil {
				return e, err
			}
			change.After = row
		case DELETE_ROWS_EVENTv0, DELETE_ROWS_EVENTv1, DELETE_ROWS_EVENTv2:
			row, err := decodeRowImage(c, table.Columns, presentBefore)
			if err != nil {
				return e, err
			}
			change.Before = row
		case UPDATE_ROWS_EVENTv0, UPDATE_ROWS_EVENTv1, UPDATE_ROWS_EVENTv2:
			before, err := decodeRowImage(c, table.Columns, presentBefore)
			if err != nil {
				return e, err
			}
			after, err := decodeRowImage(c, table.Columns, presentAfter)
			if err != nil {
				return e, err
			}
			change.Before = before
			change.After = after
		}
		e.Rows = append(e.Rows, change)
	}
	return e, nil
}

// readBitmap reads a column-present bitmap of n bits, ceil(n/8) bytes wide.
func readBitmap(c *cursor, n int) []bool {
	raw := c.bytes((n + 7) / 8)
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = raw[i/8]&(1<<uint(i%8)) != 0
	}
	return bits
}

// decodeRowImage decodes one row's worth of values for the columns marked
// present in the bitmap, in table-definition order. Grounded on the
// teacher's rbr.go nextRow, using Column.decodeValue from types.go.
func decodeRowImage(c *cursor, cols []Column, present []bool) (Row, error) {
	numPresent := 0
	for _, p := range present {
		if p {
			numPresent++
		}
	}
	nullBitmap := c.bytes((numPresent + 7) / 8)
	if c.err != nil {
		return nil, c.err
	}

	row := make(Row, len(cols))
	presentIdx := 0
	for i, col := range cols {
		if i >= len(present) || !present[i] {
			continue
		}
		isNull := nullBitmap[presentIdx/8]&(1<<uint(presentIdx%8)) != 0
		presentIdx++
		if isNull {
			row[i] = nil
			continue
		}
		v, err := col.decodeValue(c)
		if err != nil {
			return nil, errors.Wrapf(err, "binlogreader: decoding column %d (%s)", i, col.Type)
		}
		row[i] = v
	}
	return row, nil
}
