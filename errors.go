package binlogreader

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors, matching the taxonomy raised by the Python original's
// BadMagicBytesError/EventSizeTooSmallError plus the table-metadata and
// transient-connection failure modes this module adds around the Metadata
// Resolver. Callers compare with errors.Is even though every propagation
// site wraps these with errors.Wrap for context.
var (
	// ErrBadMagic is returned when a file does not begin with the 4-byte
	// binlog magic header.
	ErrBadMagic = errors.New("binlogreader: bad magic bytes")

	// ErrEventSizeTooSmall is returned when an event header declares an
	// event_size smaller than the 19-byte common header itself.
	ErrEventSizeTooSmall = errors.New("binlogreader: event size too small")

	// ErrTableMetadataUnavailable is returned when a row event references a
	// table_id with no TABLE_MAP_EVENT in the registry, or the Metadata
	// Resolver finds no columns for a table, and the reader was configured
	// to fail rather than emit a NotImplementedEvent placeholder.
	ErrTableMetadataUnavailable = errors.New("binlogreader: table metadata unavailable")
)

// MetadataConnectionError wraps a failure from the Metadata Resolver's
// underlying *sql.DB, distinguishing the two cases the Python original
// special-cases: transient connection loss (MySQL error codes 2006/2013,
// worth retrying once) versus any other failure.
type MetadataConnectionError struct {
	// Transient is true for MySQL client error codes 2006 (server gone
	// away) and 2013 (lost connection during query), the two codes the
	// original retries once before giving up.
	Transient bool
	Code      int
	Err       error
}

func (e *MetadataConnectionError) Error() string {
	kind := "other"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("binlogreader: metadata connection error (%s, code %d): %v", kind, e.Code, e.Err)
}

func (e *MetadataConnectionError) Unwrap() error {
	return e.Err
}

// transientMySQLErrorCodes are the two client error codes the original
// Python reader retries once: CR_SERVER_GONE_ERROR (2006) and
// CR_SERVER_LOST (2013).
var transientMySQLErrorCodes = map[int]bool{
	2006: true,
	2013: true,
}
