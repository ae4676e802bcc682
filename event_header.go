package binlogreader

import "time"

// eventHeader is the 19-byte header common to every binlog event.
//
// https://dev.mysql.com/doc/internals/en/binlog-event-header.html
type eventHeader struct {
	Timestamp uint32
	EventType EventType
	ServerID  uint32
	EventSize uint32
	LogPos    uint32
	Flags     uint16
}

const eventHeaderSize = 19

// checksumSize is the trailing CRC32 length appended to every event body
// once BINLOG_CHECKSUM is enabled on the server that wrote the file.
const checksumSize = 4

func decodeEventHeader(c *cursor) (eventHeader, error) {
	var h eventHeader
	h.Timestamp = c.int4()
	h.EventType = EventType(c.int1())
	h.ServerID = c.int4()
	h.EventSize = c.int4()
	h.LogPos = c.int4()
	h.Flags = c.int2()
	return h, c.err
}

// Time returns the event's embedded creation timestamp, in UTC.
func (h eventHeader) Time() time.Time {
	return time.Unix(int64(h.Timestamp), 0).UTC()
}

const (
	logEventBinlogInUseF   uint16 = 0x0001
	logEventThreadSpecificF uint16 = 0x0004
	logEventSuppressUseF   uint16 = 0x0008
	logEventArtificialF    uint16 = 0x0020
	logEventRelayLogF      uint16 = 0x0040
	logEventIgnorableF     uint16 = 0x0080
	logEventNoFilterF      uint16 = 0x0100
	logEventMtsIsolateF    uint16 = 0x0200
)

func (h eventHeader) isArtificial() bool {
	return h.Flags&logEventArtificialF != 0
}
