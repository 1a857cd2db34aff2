package sqlengine

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mimir-aip/ontostore/pkg/tsvalue"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:cursor_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCursorValueTypeDistinguishesBlankNodeFromURI exercises spec §8
// scenario 6: two user columns with shadow type-annotation columns, where a
// Resource-typed value is a blank node iff it carries the urn:bnode: prefix.
func TestCursorValueTypeDistinguishesBlankNodeFromURI(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(`CREATE TABLE t (
		v_a TEXT, v_b TEXT, v_a_type INTEGER, v_b_type INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t VALUES (?, ?, ?, ?)`,
		"urn:bnode:42", "hello", int64(tsvalue.Resource), int64(tsvalue.String)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := db.QueryContext(context.Background(), `SELECT v_a, v_b, v_a_type, v_b_type FROM t`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	cur, err := newCursor(nil, nil, rows, 2)
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	defer cur.Close()

	ok, err := cur.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next() = (%v, %v), want a row", ok, err)
	}

	if got := cur.GetValueType(0); got != tsvalue.BlankNode {
		t.Errorf("GetValueType(0) = %v, want BlankNode", got)
	}
	if got := cur.GetValueType(1); got != tsvalue.String {
		t.Errorf("GetValueType(1) = %v, want String", got)
	}
	if name := cur.GetVariableName(0); name != "a" {
		t.Errorf("GetVariableName(0) = %q, want %q", name, "a")
	}
}

func TestCursorValueTypeURIWithoutBnodePrefix(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(`CREATE TABLE t2 (v_a TEXT, v_a_type INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t2 VALUES (?, ?)`,
		"http://example.org/thing", int64(tsvalue.Resource)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	rows, err := db.QueryContext(context.Background(), `SELECT v_a, v_a_type FROM t2`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	cur, err := newCursor(nil, nil, rows, 1)
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	defer cur.Close()

	ok, err := cur.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next() = (%v, %v), want a row", ok, err)
	}
	if got := cur.GetValueType(0); got != tsvalue.URI {
		t.Errorf("GetValueType(0) = %v, want URI", got)
	}
}

func TestCursorNextReturnsFalseAtEnd(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(`CREATE TABLE t3 (v_a TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	rows, err := db.QueryContext(context.Background(), `SELECT v_a FROM t3`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	cur, err := newCursor(nil, nil, rows, 0)
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	defer cur.Close()

	ok, err := cur.Next(context.Background())
	if err != nil || ok {
		t.Fatalf("Next() on empty result = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestCursorNextRespectsContextCancellation(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(`CREATE TABLE t4 (v_a TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t4 VALUES ('x')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	rows, err := db.QueryContext(context.Background(), `SELECT v_a FROM t4`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	cur, err := newCursor(nil, nil, rows, 0)
	if err != nil {
		t.Fatalf("newCursor: %v", err)
	}
	defer cur.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := cur.Next(ctx)
	if ok || err == nil {
		t.Fatalf("Next() after cancellation = (%v, %v), want an error", ok, err)
	}
	if !IsKind(err, KindInterrupted) {
		t.Errorf("expected KindInterrupted, got %v", err)
	}
}
