package binlogreader

// QueryEvent represents a statement executed outside of row-based
// replication (DDL, or DML when the session falls back to statement-based
// binlogging). Grounded on the teacher's events.go QueryEvent.decode and
// the status-var layout documented at
// https://dev.mysql.com/doc/internals/en/query-event.html
type QueryEvent struct {
	SlaveProxyID  uint32
	ExecutionTime uint32
	ErrorCode     uint16
	StatusVars    []byte
	Schema        string
	Query         string
}

func decodeQueryEventBody(c *cursor) (QueryEvent, error) {
	var e QueryEvent
	e.SlaveProxyID = c.int4()
	e.ExecutionTime = c.int4()
	schemaLen := int(c.int1())
	e.ErrorCode = c.int2()
	statusVarsLen := int(c.int2())
	e.StatusVars = c.bytes(statusVarsLen)
	e.Schema = c.string(schemaLen)
	c.skip(1) // 0x00 terminator between schema and query
	e.Query = c.stringEOF()
	return e, c.err
}

func decodeQueryEvent(body []byte) (QueryEvent, error) {
	return decodeQueryEventBody(newCursor(body))
}

// XidEvent marks a transaction commit and carries the id the storage
// engine assigned it, used to recognize the transaction boundary.
type XidEvent struct {
	Xid uint64
}

func decodeXidEvent(body []byte) (XidEvent, error) {
	c := newCursor(body)
	e := XidEvent{Xid: c.int8()}
	return e, c.err
}

// GtidEvent carries the GTID assigned to the transaction that follows,
// replacing the binlog-file-offset notion of position with a UUID plus a
// per-source monotonic sequence number.
type GtidEvent struct {
	CommitFlag      uint8
	UUID            [16]byte
	GNO             int64
	LastCommitted   int64
	SequenceNumber  int64
	HasLogicalClock bool
}

func decodeGtidEvent(body []byte) (GtidEvent, error) {
	c := newCursor(body)
	var e GtidEvent
	e.CommitFlag = c.int1()
	copy(e.UUID[:], c.bytesInternal(16))
	e.GNO = int64(c.int8())
	if c.err != nil {
		return e, c.err
	}
	// The logical-clock fields (last_committed, sequence_number) were
	// added later and are only present when a type tag byte follows.
	if c.more() {
		_ = c.int1() // lt_type, always 2 (LOGICAL_TIMESTAMP_TYPECODE) when present
		e.LastCommitted = int64(c.int8())
		e.SequenceNumber = int64(c.int8())
		e.HasLogicalClock = c.err == nil
	}
	return e, nil
}

// BeginLoadQueryEvent is the first event of a LOAD DATA INFILE statement
// replicated as a sequence of file-block events.
type BeginLoadQueryEvent struct {
	FileID    uint32
	BlockData []byte
}

func decodeBeginLoadQueryEvent(body []byte) (BeginLoadQueryEvent, error) {
	c := newCursor(body)
	e := BeginLoadQueryEvent{FileID: c.int4()}
	e.BlockData = c.bytesEOF()
	return e, c.err
}

// ExecuteLoadQueryEvent closes out a replicated LOAD DATA INFILE: it is a
// QueryEvent body (the synthesized LOAD DATA statement) plus the file
// reassembly coordinates.
type ExecuteLoadQueryEvent struct {
	QueryEvent
	FileID           uint32
	StartPos         uint32
	EndPos           uint32
	DupHandlingFlags uint8
}

func decodeExecuteLoadQueryEvent(body []byte) (ExecuteLoadQueryEvent, error) {
	// The query text runs to the start of the fixed 13-byte tail (file_id,
	// start_pos, end_pos, dup_handling_flags), so it is decoded on its own
	// slice rather than to the end of the body.
	const tailLen = 13
	split := len(body) - tailLen
	if split < 0 {
		split = 0
	}
	var e ExecuteLoadQueryEvent
	qe, err := decodeQueryEventBody(newCursor(body[:split]))
	if err != nil {
		return e, err
	}
	e.QueryEvent = qe
	c := newCursor(body[split:])
	e.FileID = c.int4()
	e.StartPos = c.int4()
	e.EndPos = c.int4()
	e.DupHandlingFlags = c.int1()
	return e, c.err
}

// StopEvent marks a clean server shutdown. It carries no payload.
type StopEvent struct{}

func decodeStopEvent(body []byte) (StopEvent, error) {
	return StopEvent{}, nil
}

// HeartbeatEvent is sent by a master to a connected replica on an idle
// connection; it never appears in an on-disk binlog file written by the
// server itself, but the teacher's decoder supports it for log streams
// captured off the wire, and spec parity is kept here.
type HeartbeatEvent struct {
	LogFilename string
}

func decodeHeartbeatEvent(body []byte) (HeartbeatEvent, error) {
	c := newCursor(body)
	e := HeartbeatEvent{LogFilename: c.stringEOF()}
	return e, c.err
}

// IncidentEvent signals that the master suffered an event it could not
// binlog (e.g. a crash mid-statement); replication must stop here.
type IncidentEvent struct {
	Type    uint16
	Message string
}

func decodeIncidentEvent(body []byte) (IncidentEvent, error) {
	c := newCursor(body)
	var e IncidentEvent
	e.Type = c.int2()
	e.Message = c.stringN()
	return e, c.err
}

// RandEvent carries the seed pair needed to reproduce a RAND() call
// executed under statement-based replication.
type RandEvent struct {
	Seed1 uint64
	Seed2 uint64
}

func decodeRandEvent(body []byte) (RandEvent, error) {
	c := newCursor(body)
	var e RandEvent
	e.Seed1 = c.int8()
	e.Seed2 = c.int8()
	return e, c.err
}

// IntVarEvent carries the resolved value of LAST_INSERT_ID() or an
// auto_increment id, for the statement that follows.
type IntVarEvent struct {
	Type  uint8
	Value uint64
}

func decodeIntVarEvent(body []byte) (IntVarEvent, error) {
	c := newCursor(body)
	var e IntVarEvent
	e.Type = c.int1()
	e.Value = c.int8()
	return e, c.err
}

// UserVarEvent carries the value assigned to a user-defined variable
// (`SET @var := ...`) referenced by the statement that follows.
type UserVarEvent struct {
	Name     string
	IsNull   bool
	Type     ColumnType
	Charset  uint32
	Value    []byte
}

func decodeUserVarEvent(body []byte) (UserVarEvent, error) {
	c := newCursor(body)
	var e UserVarEvent
	nameLen := int(c.int4())
	e.Name = c.string(nameLen)
	isNull := c.int1()
	if isNull != 0 {
		e.IsNull = true
		return e, c.err
	}
	e.Type = ColumnType(c.int1())
	e.Charset = c.int4()
	valueLen := int(c.int4())
	e.Value = c.bytes(valueLen)
	return e, c.err
}

// NotImplementedEvent is the decoded form for an event type this package
// does not parse further. It still carries the raw EventType so a caller
// can log or count what was skipped instead of losing the frame silently.
type NotImplementedEvent struct {
	EventType EventType
}
