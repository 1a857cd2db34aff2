package fts

import (
	"context"
	"testing"
)

func TestUpdateTextIndexesCurrentViewContents(t *testing.T) {
	db := openTestDB(t)
	setupResourceTable(t, db)
	props := musicFixture()
	m := New(db, "")
	if err := m.CreateTable(context.Background(), "unicode61", props); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `INSERT INTO "Resource" ("ID", "name") VALUES (1, 'John Coltrane')`); err != nil {
		t.Fatalf("insert resource: %v", err)
	}

	if err := m.UpdateText(ctx, 1); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}

	row := db.QueryRowContext(ctx, `SELECT "name" FROM "fts5" WHERE "fts5" MATCH 'Coltrane'`)
	var name string
	if err := row.Scan(&name); err != nil {
		t.Fatalf("fts5 match after UpdateText: %v", err)
	}
	if name != "John Coltrane" {
		t.Errorf("name = %q, want John Coltrane", name)
	}
}

func TestUpdateTextSkipsRowWithNoIndexedValues(t *testing.T) {
	db := openTestDB(t)
	setupResourceTable(t, db)
	props := musicFixture()
	m := New(db, "")
	if err := m.CreateTable(context.Background(), "unicode61", props); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `INSERT INTO "Resource" ("ID", "name") VALUES (1, NULL)`); err != nil {
		t.Fatalf("insert resource: %v", err)
	}
	if err := m.UpdateText(ctx, 1); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}

	var count int
	// A plain scan of an external-content fts5 table reads fts_view, which
	// has the row; the docsize shadow table holds one row per indexed row.
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "fts5_docsize"`).Scan(&count); err != nil {
		t.Fatalf("count fts5 indexed rows: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 (row has no indexed text)", count)
	}
}

func TestDeleteTextRemovesIndexedRow(t *testing.T) {
	db := openTestDB(t)
	setupResourceTable(t, db)
	props := musicFixture()
	m := New(db, "")
	if err := m.CreateTable(context.Background(), "unicode61", props); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `INSERT INTO "Resource" ("ID", "name") VALUES (1, 'Thelonious Monk')`); err != nil {
		t.Fatalf("insert resource: %v", err)
	}
	if err := m.UpdateText(ctx, 1); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}

	if err := m.DeleteText(ctx, 1); err != nil {
		t.Fatalf("DeleteText: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "fts5" WHERE "fts5" MATCH 'Monk'`).Scan(&count); err != nil {
		t.Fatalf("count fts5 rows: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after DeleteText", count)
	}
}

func TestUpdateDeleteTextErrorWithNoColumns(t *testing.T) {
	db := openTestDB(t)
	m := New(db, "")
	ctx := context.Background()
	if err := m.UpdateText(ctx, 1); err == nil {
		t.Error("expected UpdateText to error before CreateTable established columns")
	}
	if err := m.DeleteText(ctx, 1); err == nil {
		t.Error("expected DeleteText to error before CreateTable established columns")
	}
}
