/*
Package binlogreader decodes MySQL binlog files from disk.

It is an offline reader: it never speaks the replication wire protocol and
never connects to a server as a slave. Given a directory of binlog files (and
optionally a connection to the originating server for schema lookups), it
walks the event stream in file order, resolves row-based events against
table schema pulled from information_schema, and emits a typed sequence of
decoded events for a downstream SQL-generation or auditing layer.

Typical use:

	r, err := binlogreader.Open("/var/lib/mysql/mysql-bin.000001",
		binlogreader.WithMetadataDSN("repl:secret@tcp(127.0.0.1:3306)/"),
		binlogreader.WithStartPosition(4),
		binlogreader.WithOnlySchemas("app"),
	)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		ev, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		switch data := ev.Data.(type) {
		case binlogreader.RowsEvent:
			fmt.Printf("table=%s.%s rows=%d\n",
				data.Table.Schema, data.Table.Name, len(data.Rows))
		case binlogreader.QueryEvent:
			fmt.Printf("schema=%s query=%s\n", data.Schema, data.Query)
		}
	}

Reading continues across ROTATE_EVENT boundaries into the file the event
names, looked up in the same directory, matching how a DBA points this at a live data
directory and expects the whole binlog series to read as one stream. See
cmd/binlogview for a runnable demonstration.
*/
package binlogreader
