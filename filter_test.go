package binlogreader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterPipelineNoFiltersAllowsEverything(t *testing.T) {
	f := newFilterPipeline(&Config{})
	require.True(t, f.packetAllowed(QUERY_EVENT))
	require.True(t, f.packetAllowed(LOAD_EVENT))
	require.True(t, f.packetAllowed(TABLE_MAP_EVENT))
}

func TestFilterPipelineOnlyEventsIsExclusive(t *testing.T) {
	f := newFilterPipeline(&Config{OnlyEvents: []EventType{QUERY_EVENT, XID_EVENT}})
	require.True(t, f.packetAllowed(QUERY_EVENT))
	require.True(t, f.packetAllowed(XID_EVENT))
	// TABLE_MAP_EVENT and ROTATE_EVENT always pass the packet-level gate
	// regardless of an OnlyEvents allow-list that omits them...
	require.True(t, f.packetAllowed(TABLE_MAP_EVENT))
	require.True(t, f.packetAllowed(ROTATE_EVENT))
	// ...but the strict allowed-set used for what a caller actually
	// receives does not grant them that exemption.
	r := &Reader{filter: f}
	require.False(t, r.finalAllowed(TABLE_MAP_EVENT))
	require.True(t, r.finalAllowed(QUERY_EVENT))
}

func TestFilterPipelineIgnoredEventsSubtractsFromUniverse(t *testing.T) {
	f := newFilterPipeline(&Config{IgnoredEvents: []EventType{XID_EVENT}})
	require.False(t, f.packetAllowed(XID_EVENT))
	require.True(t, f.packetAllowed(QUERY_EVENT))
}

func TestFilterPipelineFilterNonImplementedEvents(t *testing.T) {
	f := newFilterPipeline(&Config{FilterNonImplementedEvents: true})
	require.True(t, f.packetAllowed(QUERY_EVENT))
	require.False(t, f.packetAllowed(LOAD_EVENT)) // no decoder for LOAD_EVENT
}

func TestFilterPipelinePositionGating(t *testing.T) {
	f := newFilterPipeline(&Config{StartPos: 100, StopPos: 200})
	require.False(t, f.positionAllowed(eventHeader{LogPos: 50}))
	require.True(t, f.positionAllowed(eventHeader{LogPos: 150}))
	require.False(t, f.positionAllowed(eventHeader{LogPos: 250}))
	require.True(t, f.pastStopPosition(eventHeader{LogPos: 250}))
	require.False(t, f.pastStopPosition(eventHeader{LogPos: 150}))
}

func TestFilterPipelineSkipToTimestamp(t *testing.T) {
	f := newFilterPipeline(&Config{SkipToTimestamp: 1000})
	require.False(t, f.positionAllowed(eventHeader{Timestamp: 999}))
	require.True(t, f.positionAllowed(eventHeader{Timestamp: 1000}))
}

func TestFilterPipelineTableAllowList(t *testing.T) {
	f := newFilterPipeline(&Config{
		OnlySchemas:   []string{"app"},
		IgnoredTables: []string{"app.secrets"},
	})
	require.True(t, f.tableAllowed("app", "users"))
	require.False(t, f.tableAllowed("app", "secrets"))
	require.False(t, f.tableAllowed("other", "users"))
}

func TestSplitSchemaTable(t *testing.T) {
	schema, table := splitSchemaTable("app.users")
	require.Equal(t, "app", schema)
	require.Equal(t, "users", table)
}
