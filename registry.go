package binlogreader

import "github.com/sirupsen/logrus"

// TableSchema is the column list a ROWS_EVENT is decoded against: the
// binlog's own TABLE_MAP_EVENT column types and optional metadata, enriched
// with column names from the Metadata Resolver when the binlog itself
// didn't carry them (binlog_row_metadata=MINIMAL, the server default).
type TableSchema struct {
	Schema  string
	Name    string
	Columns []Column
}

// TableMapRegistry is the table_id -> TableSchema map threaded through a
// reader's lifetime. table_id values are reused across server restarts, so
// the only safe point to evict is on every ROTATE_EVENT: there is no other
// signal available from the file stream that a table_id has been
// reassigned to a different table.
//
// Grounded on the teacher's events.go/rbr.go tableMap field and on
// Vivino-bocadillo's reader.go initTableMap/tableMap, which clears the same
// way on rotation.
type TableMapRegistry struct {
	tables map[uint64]*TableSchema
	log    *logrus.Entry
}

func newTableMapRegistry(log *logrus.Entry) *TableMapRegistry {
	return &TableMapRegistry{
		tables: make(map[uint64]*TableSchema),
		log:    log,
	}
}

// Put records the schema carried by a TABLE_MAP_EVENT.
func (r *TableMapRegistry) Put(tableID uint64, schema *TableSchema) {
	r.tables[tableID] = schema
}

// Get looks up the schema for a table_id seen in a ROWS_EVENT. A miss means
// the frame reader encountered row events before any table map for that id
// was seen since the last rotation.
func (r *TableMapRegistry) Get(tableID uint64) (*TableSchema, bool) {
	s, ok := r.tables[tableID]
	return s, ok
}

// Clear empties the registry. Called on every ROTATE_EVENT.
func (r *TableMapRegistry) Clear() {
	if len(r.tables) > 0 && r.log != nil {
		r.log.WithField("tables", len(r.tables)).Debug("clearing table map registry on rotate")
	}
	r.tables = make(map[uint64]*TableSchema)
}

// Len reports how many table_ids are currently tracked.
func (r *TableMapRegistry) Len() int {
	return len(r.tables)
}
