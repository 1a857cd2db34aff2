package fts

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/mimir-aip/ontostore/pkg/ontology"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func musicFixture() []*ontology.Property {
	artist := &ontology.Class{URI: "http://example.org/Artist", LocalName: "Artist"}
	return []*ontology.Property{
		{
			URI:             "http://example.org/name",
			LocalName:       "name",
			Domain:          artist,
			FulltextIndexed: true,
			MultipleValues:  false,
		},
		{
			URI:             "http://example.org/bio",
			LocalName:       "bio",
			Domain:          artist,
			FulltextIndexed: true,
			MultipleValues:  true,
		},
	}
}

func setupResourceTable(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE "Resource" ("ID" INTEGER PRIMARY KEY, "name" TEXT)`); err != nil {
		t.Fatalf("create Resource: %v", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE "Artist_bio" ("ID" INTEGER, "Value" TEXT)`); err != nil {
		t.Fatalf("create Artist_bio: %v", err)
	}
}

func TestCreateTableBuildsVirtualTableAndView(t *testing.T) {
	db := openTestDB(t)
	setupResourceTable(t, db)
	props := musicFixture()

	m := New(db, "")
	if err := m.InitDB(props); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if err := m.CreateTable(context.Background(), "unicode61", props); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	if _, err := db.ExecContext(context.Background(),
		`INSERT INTO "Resource" ("ID", "name") VALUES (1, 'Miles Davis')`); err != nil {
		t.Fatalf("insert resource: %v", err)
	}
	if _, err := db.ExecContext(context.Background(),
		`INSERT INTO "Artist_bio" ("ID", "Value") VALUES (1, 'trumpeter and bandleader')`); err != nil {
		t.Fatalf("insert bio: %v", err)
	}

	if err := m.RebuildTokens(context.Background()); err != nil {
		t.Fatalf("RebuildTokens: %v", err)
	}

	row := db.QueryRowContext(context.Background(),
		`SELECT "name" FROM "fts5" WHERE "fts5" MATCH 'trumpeter'`)
	var name string
	if err := row.Scan(&name); err != nil {
		t.Fatalf("fts5 match query: %v", err)
	}
	if name != "Miles Davis" {
		t.Errorf("name = %q, want Miles Davis", name)
	}
}

func TestCreateTableRejectsNoFulltextProperties(t *testing.T) {
	db := openTestDB(t)
	setupResourceTable(t, db)
	m := New(db, "")
	artist := &ontology.Class{URI: "http://example.org/Artist", LocalName: "Artist"}
	props := []*ontology.Property{{URI: "http://example.org/age", LocalName: "age", Domain: artist}}
	if err := m.CreateTable(context.Background(), "unicode61", props); err == nil {
		t.Fatal("expected an error with no fulltext-indexed properties")
	}
}

func TestAlterTableNoopWhenColumnsUnchanged(t *testing.T) {
	db := openTestDB(t)
	setupResourceTable(t, db)
	props := musicFixture()
	m := New(db, "")
	if err := m.CreateTable(context.Background(), "unicode61", props); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	before := m.columns
	if err := m.AlterTable(context.Background(), "unicode61", props); err != nil {
		t.Fatalf("AlterTable: %v", err)
	}
	if !columnsEqual(before, m.columns) {
		t.Errorf("columns changed on a no-op AlterTable: %v -> %v", before, m.columns)
	}
}

func TestAlterTableRecreatesOnColumnChange(t *testing.T) {
	db := openTestDB(t)
	setupResourceTable(t, db)
	props := musicFixture()
	m := New(db, "")
	if err := m.CreateTable(context.Background(), "unicode61", props); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	narrower := props[:1]
	if err := m.AlterTable(context.Background(), "unicode61", narrower); err != nil {
		t.Fatalf("AlterTable: %v", err)
	}
	if len(m.columns) != 1 || m.columns[0] != "name" {
		t.Errorf("columns = %v, want [name]", m.columns)
	}
}

func TestDeleteTableDropsViewAndVirtualTable(t *testing.T) {
	db := openTestDB(t)
	setupResourceTable(t, db)
	props := musicFixture()
	m := New(db, "")
	if err := m.CreateTable(context.Background(), "unicode61", props); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := m.DeleteTable(context.Background()); err != nil {
		t.Fatalf("DeleteTable: %v", err)
	}
	if m.columns != nil {
		t.Errorf("expected columns cleared after DeleteTable")
	}
	if _, err := db.ExecContext(context.Background(), "SELECT * FROM fts5"); err == nil {
		t.Errorf("expected fts5 table to be gone")
	}
}
