package binlogreader

// Config holds every construction-time parameter this package honors, the
// Go-native replacement for the Python original's constructor keyword
// arguments. Field names CamelCase the originals (log_pos -> StartPos,
// ctl_connection_settings -> MetadataDSN, etc.) per SPEC_FULL.md §6.
//
// Built up via Option values passed to Open, matching the teacher's own
// preference for small structs assembled field by field rather than a
// flags/ini parser (the CLI layer that would own flag parsing is out of
// scope here).
type Config struct {
	// MetadataDSN is a database/sql data source name for the Metadata
	// Resolver's information_schema queries and checksum probe. Empty
	// disables metadata resolution: row events are then decoded only from
	// the column types their TABLE_MAP_EVENT carries, and column names are
	// known only when the binlog itself wrote them.
	MetadataDSN string

	OnlyEvents                 []EventType
	IgnoredEvents              []EventType
	FilterNonImplementedEvents bool

	StartPos uint32
	StopPos  uint32

	OnlyTables     []string
	IgnoredTables  []string
	OnlySchemas    []string
	IgnoredSchemas []string

	// FreezeSchema keeps a table's first-resolved schema for the life of
	// the reader, never re-querying information_schema for it again, even
	// across file rotations.
	FreezeSchema bool

	// SkipToTimestamp discards events (other than rotations, which are
	// always honored first) whose header timestamp is earlier than this
	// value.
	SkipToTimestamp uint32

	// FailOnTableMetadataUnavailable makes Next return
	// ErrTableMetadataUnavailable instead of emitting a NotImplementedEvent
	// placeholder for a row event whose table schema could not be resolved.
	FailOnTableMetadataUnavailable bool

	// IgnoreVirtualColumns excludes generated (EXTRA='VIRTUAL GENERATED')
	// columns from the Metadata Resolver's column list.
	IgnoreVirtualColumns bool
}

// Option configures a Config.
type Option func(*Config)

// WithMetadataDSN sets the connection used to resolve table schema and
// probe BINLOG_CHECKSUM.
func WithMetadataDSN(dsn string) Option {
	return func(c *Config) { c.MetadataDSN = dsn }
}

// WithOnlyEvents restricts decoding to the given event types.
func WithOnlyEvents(types ...EventType) Option {
	return func(c *Config) { c.OnlyEvents = types }
}

// WithIgnoredEvents excludes the given event types from decoding.
func WithIgnoredEvents(types ...EventType) Option {
	return func(c *Config) { c.IgnoredEvents = types }
}

// WithFilterNonImplementedEvents drops events this package has no decoder
// for (surfaced as NotImplementedEvent) instead of emitting them.
func WithFilterNonImplementedEvents() Option {
	return func(c *Config) { c.FilterNonImplementedEvents = true }
}

// WithStartPosition drops events whose log position is below pos. Every
// frame is still read and decoded from the start of the file, so table maps
// before pos still populate the registry; the check applies to every file
// the reader reads.
func WithStartPosition(pos uint32) Option {
	return func(c *Config) { c.StartPos = pos }
}

// WithStopPosition stops decoding once an event's log position reaches
// pos, within the file that contains it.
func WithStopPosition(pos uint32) Option {
	return func(c *Config) { c.StopPos = pos }
}

// WithOnlyTables restricts row events to the given "schema.table" names.
func WithOnlyTables(tables ...string) Option {
	return func(c *Config) { c.OnlyTables = tables }
}

// WithIgnoredTables excludes the given "schema.table" names from row
// events.
func WithIgnoredTables(tables ...string) Option {
	return func(c *Config) { c.IgnoredTables = tables }
}

// WithOnlySchemas restricts row events to the given schema names.
func WithOnlySchemas(schemas ...string) Option {
	return func(c *Config) { c.OnlySchemas = schemas }
}

// WithIgnoredSchemas excludes the given schema names from row events.
func WithIgnoredSchemas(schemas ...string) Option {
	return func(c *Config) { c.IgnoredSchemas = schemas }
}

// WithFreezeSchema caches each table's schema permanently after first
// resolution, ignoring later rotations.
func WithFreezeSchema() Option {
	return func(c *Config) { c.FreezeSchema = true }
}

// WithSkipToTimestamp discards events older than ts, applied after
// rotation handling so it never starves the table map registry.
func WithSkipToTimestamp(ts uint32) Option {
	return func(c *Config) { c.SkipToTimestamp = ts }
}

// WithFailOnTableMetadataUnavailable makes unresolved row-event schema a
// hard error instead of a NotImplementedEvent placeholder.
func WithFailOnTableMetadataUnavailable() Option {
	return func(c *Config) { c.FailOnTableMetadataUnavailable = true }
}

// WithIgnoreVirtualColumns excludes generated columns from resolved table
// schema.
func WithIgnoreVirtualColumns() Option {
	return func(c *Config) { c.IgnoreVirtualColumns = true }
}
