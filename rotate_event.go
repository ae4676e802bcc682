package binlogreader

// RotateEvent points the reader at the next file in the binlog series. It
// is written both as the final event of a full file (before the server
// rolls over) and as the synthetic first event of the new file.
//
// Grounded on the teacher's rotate_event.go, adapted to the cursor type.
type RotateEvent struct {
	Position    uint64
	NextLogName string
}

func decodeRotateEvent(body []byte) (RotateEvent, error) {
	c := newCursor(body)
	var e RotateEvent
	e.Position = c.int8()
	e.NextLogName = c.stringEOF()
	return e, c.err
}
