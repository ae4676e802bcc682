package binlogreader

// DecodedEvent is one fully decoded binlog event: the common header plus
// the type-specific payload in Data. Data's concrete type is one of the
// *Event types declared across format_description_event.go,
// rotate_event.go, query_event.go, table_map_event.go, and rows_event.go.
type DecodedEvent struct {
	Header eventHeader
	Data   interface{}
}

// Type returns the event's wire type.
func (e DecodedEvent) Type() EventType {
	return e.Header.EventType
}

// LogPos returns the byte offset, within the current file, of the first
// byte following this event (the value the server itself writes into the
// header's log_pos field).
func (e DecodedEvent) LogPos() uint32 {
	return e.Header.LogPos
}
