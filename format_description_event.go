package binlogreader

// FormatDescriptionEvent is always the first event in a binlog file. It
// declares the server version that wrote the file and the per-event-type
// header length table used to size every other event's post-header.
//
// Grounded on the teacher's events.go FormatDescriptionEvent.decode, which
// is itself the reference for how checksum-trailer presence is derived:
// when the last byte of the body is 0 or 1 it is taken as the checksum
// algorithm byte (1 meaning CRC32) rather than a header-length entry.
type FormatDescriptionEvent struct {
	BinlogVersion          uint16
	ServerVersion          string
	CreateTimestamp        uint32
	EventHeaderLength      uint8
	EventTypeHeaderLengths []byte
	ChecksumAlgorithm      ChecksumAlgorithm
}

// ChecksumAlgorithm identifies the trailing checksum format, if any,
// appended to every event body after this FORMAT_DESCRIPTION_EVENT.
type ChecksumAlgorithm uint8

const (
	ChecksumNone ChecksumAlgorithm = 0
	ChecksumCRC32 ChecksumAlgorithm = 1
	// ChecksumUndefined means the file predates the checksum-algorithm
	// byte (server older than 5.6.1); whether a trailer is present must
	// come from elsewhere, see decoder.checksumOverride.
	ChecksumUndefined ChecksumAlgorithm = 0xff
)

func decodeFormatDescriptionEvent(body []byte) (FormatDescriptionEvent, error) {
	c := newCursor(body)
	var e FormatDescriptionEvent
	e.BinlogVersion = c.int2()
	e.ServerVersion = c.string(50)
	e.CreateTimestamp = c.int4()
	e.EventHeaderLength = c.int1()
	if c.err != nil {
		return e, c.err
	}

	rest := c.bytesEOF()
	if c.err != nil {
		return e, c.err
	}

	// The checksum-algorithm byte, when present, is the last byte of the
	// body; the remaining bytes are the per-type post-header length table.
	// A file written by a server that predates the checksum feature has no
	// such trailing byte and the whole remainder is the length table.
	if len(rest) > 0 {
		algo := ChecksumAlgorithm(rest[len(rest)-1])
		if algo == ChecksumNone || algo == ChecksumCRC32 {
			e.ChecksumAlgorithm = algo
			e.EventTypeHeaderLengths = rest[:len(rest)-1]
		} else {
			e.ChecksumAlgorithm = ChecksumUndefined
			e.EventTypeHeaderLengths = rest
		}
	}
	return e, nil
}

// checksumLen returns the number of trailing checksum bytes appended to
// every event body under this format description, given any resolver
// override for servers too old to self-describe it.
func (e FormatDescriptionEvent) checksumLen(override *bool) int {
	switch e.ChecksumAlgorithm {
	case ChecksumCRC32:
		return checksumSize
	case ChecksumNone:
		return 0
	default:
		if override != nil && *override {
			return checksumSize
		}
		return 0
	}
}
