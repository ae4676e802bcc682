package binlogreader

import (
	"github.com/pkg/errors"
)

// decoder turns rawFrames from one open file into DecodedEvents, tracking
// the state a correct decode needs across the whole file: the format
// description (for checksum length and per-type post-header lengths) and
// the table map registry (for resolving ROWS_EVENT bodies).
//
// Grounded on the teacher's events.go dispatch switch and
// FormatDescriptionEvent.decode checksum derivation, reworked into eager
// per-call decoding instead of the teacher's lazy Event/body-left-unread
// design, since this package hands callers one fully decoded value per
// Next() rather than a handle they must further unpack.
type decoder struct {
	registry          *TableMapRegistry
	fde               *FormatDescriptionEvent
	checksumOverride  *bool
	ignoreVirtualCols bool
}

func newDecoder(registry *TableMapRegistry) *decoder {
	return &decoder{registry: registry}
}

// setChecksumOverride installs the Metadata Resolver's ChecksumEnabled()
// probe result, used only for files whose FORMAT_DESCRIPTION_EVENT
// predates the checksum-algorithm byte entirely.
func (d *decoder) setChecksumOverride(enabled bool) {
	d.checksumOverride = &enabled
}

// decode strips the checksum trailer (if any) from frame.Body and decodes
// the remainder according to frame.Header.EventType.
func (d *decoder) decode(frame rawFrame) (DecodedEvent, error) {
	body := frame.Body
	if d.fde != nil {
		n := d.fde.checksumLen(d.checksumOverride)
		if n > 0 {
			if len(body) < n {
				return DecodedEvent{}, errors.Errorf("binlogreader: event body shorter than checksum trailer (%d < %d)", len(body), n)
			}
			body = body[:len(body)-n]
		}
	}

	ev := DecodedEvent{Header: frame.Header}

	switch frame.Header.EventType {
	case FORMAT_DESCRIPTION_EVENT:
		fde, err := decodeFormatDescriptionEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding format description event")
		}
		d.fde = &fde
		ev.Data = fde

	case ROTATE_EVENT:
		re, err := decodeRotateEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding rotate event")
		}
		d.registry.Clear()
		ev.Data = re

	case QUERY_EVENT:
		qe, err := decodeQueryEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding query event")
		}
		ev.Data = qe

	case XID_EVENT:
		xe, err := decodeXidEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding xid event")
		}
		ev.Data = xe

	case GTID_EVENT, ANONYMOUS_GTID_EVENT:
		ge, err := decodeGtidEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding gtid event")
		}
		ev.Data = ge

	case TABLE_MAP_EVENT:
		tme, err := decodeTableMapEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding table map event")
		}
		schema := &TableSchema{Schema: tme.SchemaName, Name: tme.TableName, Columns: tme.Columns}
		d.registry.Put(tme.TableID, schema)
		ev.Data = tme

	case WRITE_ROWS_EVENTv0, WRITE_ROWS_EVENTv1, WRITE_ROWS_EVENTv2,
		UPDATE_ROWS_EVENTv0, UPDATE_ROWS_EVENTv1, UPDATE_ROWS_EVENTv2,
		DELETE_ROWS_EVENTv0, DELETE_ROWS_EVENTv1, DELETE_ROWS_EVENTv2:
		tableID, err := peekRowsEventTableID(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: reading rows event table_id")
		}
		schema, ok := d.registry.Get(tableID)
		if !ok {
			return ev, errors.Wrapf(ErrTableMetadataUnavailable, "table_id=%d", tableID)
		}
		re, err := decodeRowsEvent(body, frame.Header.EventType, schema)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding rows event")
		}
		ev.Data = re

	case STOP_EVENT:
		se, _ := decodeStopEvent(body)
		ev.Data = se

	case HEARTBEAT_EVENT:
		he, err := decodeHeartbeatEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding heartbeat event")
		}
		ev.Data = he

	case INCIDENT_EVENT:
		ie, err := decodeIncidentEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding incident event")
		}
		ev.Data = ie

	case RAND_EVENT:
		rne, err := decodeRandEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding rand event")
		}
		ev.Data = rne

	case INTVAR_EVENT:
		ive, err := decodeIntVarEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding intvar event")
		}
		ev.Data = ive

	case USER_VAR_EVENT:
		uve, err := decodeUserVarEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding user var event")
		}
		ev.Data = uve

	case BEGIN_LOAD_QUERY_EVENT:
		be, err := decodeBeginLoadQueryEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding begin load query event")
		}
		ev.Data = be

	case EXECUTE_LOAD_QUERY_EVENT:
		ee, err := decodeExecuteLoadQueryEvent(body)
		if err != nil {
			return ev, errors.Wrap(err, "binlogreader: decoding execute load query event")
		}
		ev.Data = ee

	default:
		ev.Data = NotImplementedEvent{EventType: frame.Header.EventType}
	}

	return ev, nil
}

// peekRowsEventTableID reads just the leading table_id field on a cursor of
// its own, since the decoder needs the id to resolve a schema before it can
// commit to decoding the rest of the event with decodeRowsEvent's own
// cursor. table_id is a fixed 6-byte field across every ROWS_EVENT version.
func peekRowsEventTableID(body []byte) (uint64, error) {
	c := newCursor(body)
	id := c.int6()
	return id, c.err
}
