package sqlengine

import (
	"context"
	"database/sql"
	"time"
)

// CacheKind selects which MRU (if any) a Statement is drawn from.
type CacheKind int

const (
	CacheNone CacheKind = iota
	CacheSelect
	CacheUpdate
)

// Statement is a prepared SQL text plus its accumulated positional
// bindings. Binding is 0-based from the caller's perspective, translated to
// database/sql's native 1-based placeholder ordering at Query/Exec time
// (spec §4.3).
type Statement struct {
	text   string
	kind   CacheKind
	stmt   *sql.Stmt
	args   []any
	inUse  bool
}

func newStatement(text string, kind CacheKind, stmt *sql.Stmt) *Statement {
	return &Statement{text: text, kind: kind, stmt: stmt}
}

func (s *Statement) ensureArgLen(pos int) {
	for len(s.args) <= pos {
		s.args = append(s.args, nil)
	}
}

// BindInt64 binds a 64-bit integer at the 0-based position pos.
func (s *Statement) BindInt64(pos int, v int64) {
	s.ensureArgLen(pos)
	s.args[pos] = v
}

// BindDouble binds a float64 at pos.
func (s *Statement) BindDouble(pos int, v float64) {
	s.ensureArgLen(pos)
	s.args[pos] = v
}

// BindText binds a copied string at pos.
func (s *Statement) BindText(pos int, v string) {
	s.ensureArgLen(pos)
	s.args[pos] = v
}

// BindBlob binds a byte slice at pos; length and embedded NULs are
// preserved, required for the langString `text\0langTag` layout (§6).
func (s *Statement) BindBlob(pos int, v []byte) {
	s.ensureArgLen(pos)
	cp := make([]byte, len(v))
	copy(cp, v)
	s.args[pos] = cp
}

// BindNull binds SQL NULL at pos.
func (s *Statement) BindNull(pos int) {
	s.ensureArgLen(pos)
	s.args[pos] = nil
}

// BindTime binds t formatted as ISO 8601 UTC at pos.
func (s *Statement) BindTime(pos int, t time.Time) {
	s.ensureArgLen(pos)
	s.args[pos] = t.UTC().Format(time.RFC3339Nano)
}

// BindValue is the generic tagged-value dispatcher described in spec §4.3.
func (s *Statement) BindValue(pos int, v any) {
	switch val := v.(type) {
	case nil:
		s.BindNull(pos)
	case int:
		s.BindInt64(pos, int64(val))
	case int64:
		s.BindInt64(pos, val)
	case float64:
		s.BindDouble(pos, val)
	case bool:
		if val {
			s.BindInt64(pos, 1)
		} else {
			s.BindInt64(pos, 0)
		}
	case string:
		s.BindText(pos, val)
	case []byte:
		s.BindBlob(pos, val)
	case time.Time:
		s.BindTime(pos, val)
	default:
		s.ensureArgLen(pos)
		s.args[pos] = val
	}
}

// Reset clears all bound arguments without re-preparing, so a cached
// Statement can be reused for another invocation.
func (s *Statement) Reset() {
	s.args = s.args[:0]
}

// Text returns the SQL text this statement was prepared from, the MRU key.
func (s *Statement) Text() string { return s.text }

func (s *Statement) queryContext(ctx context.Context) (*sql.Rows, error) {
	return s.stmt.QueryContext(ctx, s.args...)
}

func (s *Statement) execContext(ctx context.Context) (sql.Result, error) {
	return s.stmt.ExecContext(ctx, s.args...)
}

func (s *Statement) close() {
	if s.stmt != nil {
		s.stmt.Close()
	}
}
