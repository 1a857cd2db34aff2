package sqlengine

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/mimir-aip/ontostore/pkg/tsvalue"
)

const blankNodePrefix = "urn:bnode:"

// Cursor is the streaming row iterator of spec §4.4. nUserColumns == 0 means
// "report every SQLite column"; a positive nUserColumns means columns
// [0, nUserColumns) are user-visible and [nUserColumns, 2*nUserColumns) are
// shadow value-type annotation columns (spec §4.4/§8 scenario 6).
type Cursor struct {
	iface        *Interface
	stmt         *Statement
	rows         *sql.Rows
	columnNames  []string
	nUserColumns int
	finished     bool
	current      []any
}

func newCursor(iface *Interface, stmt *Statement, rows *sql.Rows, nUserColumns int) (*Cursor, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, newError(KindQueryError, "cursor columns", err)
	}
	return &Cursor{
		iface:        iface,
		stmt:         stmt,
		rows:         rows,
		columnNames:  names,
		nUserColumns: nUserColumns,
	}, nil
}

// Next advances the cursor one row, or returns false once exhausted. ctx
// cancellation surfaces as an Interrupted error and finalizes the cursor.
func (c *Cursor) Next(ctx context.Context) (bool, error) {
	if c.finished || c.rows == nil {
		return false, nil
	}
	select {
	case <-ctx.Done():
		c.finished = true
		return false, newError(KindInterrupted, "cursor next", ctx.Err())
	default:
	}

	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.finished = true
			return false, newError(classify(err), "cursor next", err)
		}
		c.finished = true
		return false, nil
	}

	dest := make([]any, len(c.columnNames))
	ptrs := make([]any, len(c.columnNames))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.finished = true
		return false, newError(classify(err), "cursor scan", err)
	}
	c.current = dest
	return true, nil
}

// Rewind resets the statement and re-executes it, clearing the finished
// flag so iteration can start over.
func (c *Cursor) Rewind(ctx context.Context) error {
	if c.stmt == nil {
		return nil
	}
	if c.rows != nil {
		c.rows.Close()
	}
	rows, err := c.stmt.queryContext(ctx)
	if err != nil {
		return newError(classify(err), "cursor rewind", err)
	}
	c.rows = rows
	c.finished = false
	c.current = nil
	return nil
}

// Close releases the cursor's rows and unpins its statement. After Close,
// Next and Rewind are no-ops (spec §8 cursor contract).
func (c *Cursor) Close() {
	if c.rows != nil {
		c.rows.Close()
		c.rows = nil
	}
	if c.stmt != nil && c.iface != nil {
		c.iface.releaseStatement(c.stmt)
	}
	c.finished = true
	c.stmt = nil
}

// GetNColumns returns the logical column count: nUserColumns if set, else
// the physical SQLite column count.
func (c *Cursor) GetNColumns() int {
	if c.nUserColumns > 0 {
		return c.nUserColumns
	}
	return len(c.columnNames)
}

// GetVariableName returns the SQL column name for col, with an internal
// "v_" prefix stripped (spec §4.4/§6).
func (c *Cursor) GetVariableName(col int) string {
	if col < 0 || col >= len(c.columnNames) {
		return ""
	}
	return strings.TrimPrefix(c.columnNames[col], "v_")
}

// GetValueType resolves the value type of column col for the current row
// per spec §4.4: uses the shadow annotation column at col+nUserColumns when
// present, else infers from the underlying SQLite storage class.
func (c *Cursor) GetValueType(col int) tsvalue.Type {
	if c.current == nil {
		return tsvalue.Unbound
	}
	if c.nUserColumns > 0 {
		shadowCol := col + c.nUserColumns
		if shadowCol < len(c.current) {
			if c.current[col] == nil {
				return tsvalue.Unbound
			}
			code, ok := asInt(c.current[shadowCol])
			if !ok {
				return tsvalue.Unbound
			}
			t := tsvalue.FromDataTypeCode(code)
			if t == tsvalue.Resource {
				if s, ok := asString(c.current[col]); ok && strings.HasPrefix(s, blankNodePrefix) {
					return tsvalue.BlankNode
				}
				return tsvalue.URI
			}
			return t
		}
	}
	return inferValueType(c.current[col])
}

func inferValueType(v any) tsvalue.Type {
	switch v.(type) {
	case nil:
		return tsvalue.Unbound
	case int64, int:
		return tsvalue.Integer
	case float64:
		return tsvalue.Double
	default:
		return tsvalue.String
	}
}

// GetInteger reads column col as an integer.
func (c *Cursor) GetInteger(col int) int64 {
	if c.current == nil || col < 0 || col >= len(c.current) {
		return 0
	}
	v, _ := asInt64(c.current[col])
	return v
}

// GetDouble reads column col as a float.
func (c *Cursor) GetDouble(col int) float64 {
	if c.current == nil || col < 0 || col >= len(c.current) {
		return 0
	}
	switch v := c.current[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// GetString reads column col as a string; outLength reports its byte
// length, matching the out-param shape of the C original.
func (c *Cursor) GetString(col int) (value string, outLength int) {
	if c.current == nil || col < 0 || col >= len(c.current) {
		return "", 0
	}
	s, _ := asString(c.current[col])
	return s, len(s)
}

// GetBoolean reads column col and reports true when its string form is
// "true" or "1" (an integer 1 column renders as "1").
func (c *Cursor) GetBoolean(col int) bool {
	s, _ := c.GetString(col)
	return s == "true" || s == "1"
}

// GetBlob reads column col's raw bytes, for langString columns where the
// text\0lang layout (pkg/langstring) must stay intact rather than going
// through GetString's lossy string coercion.
func (c *Cursor) GetBlob(col int) ([]byte, bool) {
	if c.current == nil || col < 0 || col >= len(c.current) {
		return nil, false
	}
	switch v := c.current[col].(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

func asInt(v any) (int, bool) {
	i, ok := asInt64(v)
	return int(i), ok
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), true
	case nil:
		return "", false
	default:
		return "", false
	}
}
