package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
)

// stubConn emulates the handful of statements the catalog store issues,
// keeping kit and entry state in memory so round trips can be asserted
// without a Postgres server.
type stubConn struct {
	execs   []string
	kits    map[string]bool // name|kind
	entries []stubEntry
}

type stubEntry struct {
	kit, kind        string
	pos              int64
	id, i7Seq, i5Seq string
}

var stubSeq uint64

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{kits: make(map[string]bool)}
	name := fmt.Sprintf("stubcat%d", atomic.AddUint64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

func (c *stubConn) Ping(context.Context) error { return nil }

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	q := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(q, "CREATE TABLE"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(q, "DELETE FROM KIT_ENTRIES"):
		kit, kind := args[0].Value.(string), args[1].Value.(string)
		kept := c.entries[:0]
		for _, e := range c.entries {
			if e.kit != kit || e.kind != kind {
				kept = append(kept, e)
			}
		}
		c.entries = kept
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(q, "INSERT INTO KITS"):
		c.kits[args[0].Value.(string)+"|"+args[1].Value.(string)] = true
		return driver.RowsAffected(1), nil
	case strings.HasPrefix(q, "INSERT INTO KIT_ENTRIES"):
		e := stubEntry{
			kit:   args[0].Value.(string),
			kind:  args[1].Value.(string),
			pos:   args[2].Value.(int64),
			id:    args[3].Value.(string),
			i7Seq: args[4].Value.(string),
		}
		if len(args) > 5 {
			e.i5Seq = args[5].Value.(string)
		}
		c.entries = append(c.entries, e)
		return driver.RowsAffected(1), nil
	}
	return nil, fmt.Errorf("unexpected exec: %s", query)
}

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.Contains(q, "COUNT(*)"):
		n := int64(0)
		if c.kits[args[0].Value.(string)+"|"+args[1].Value.(string)] {
			n = 1
		}
		return &stubRows{cols: []string{"count"}, rows: [][]driver.Value{{n}}}, nil
	case strings.HasPrefix(q, "SELECT NAME, KIND FROM KITS"):
		keys := make([]string, 0, len(c.kits))
		for k := range c.kits {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]driver.Value, 0, len(keys))
		for _, k := range keys {
			parts := strings.SplitN(k, "|", 2)
			rows = append(rows, []driver.Value{parts[0], parts[1]})
		}
		return &stubRows{cols: []string{"name", "kind"}, rows: rows}, nil
	case strings.HasPrefix(q, "SELECT ID, I7"):
		kit, kind := args[0].Value.(string), args[1].Value.(string)
		var matched []stubEntry
		for _, e := range c.entries {
			if e.kit == kit && e.kind == kind {
				matched = append(matched, e)
			}
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].pos < matched[j].pos })
		withI5 := strings.HasPrefix(q, "SELECT ID, I7, I5")
		cols := []string{"id", "i7"}
		if withI5 {
			cols = append(cols, "i5")
		}
		rows := make([][]driver.Value, 0, len(matched))
		for _, e := range matched {
			row := []driver.Value{e.id, e.i7Seq}
			if withI5 {
				row = append(row, e.i5Seq)
			}
			rows = append(rows, row)
		}
		return &stubRows{cols: cols, rows: rows}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", query)
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
