// Package fts implements the per-attached-database full-text-search
// integration of spec §4.6: a single "fts5" virtual table backed by an
// "fts_view" projection over the text-typed properties of the ontology.
// Lifecycle operations (create/alter/delete/rebuild) live here; row-level
// update_text/delete_text live in text.go.
package fts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mimir-aip/ontostore/pkg/ontology"
)

// resourceTable is the table fts_view correlates against by ID, the same
// table sqlengine.Interface.ResolveURI queries.
const resourceTable = "Resource"

// Manager owns the fts5 table and fts_view projection for one attached
// database. database is the ATTACH alias, or "" for the main database.
type Manager struct {
	db       *sql.DB
	database string
	columns  []string
}

// New wraps db (typically sqlengine.Interface.DB()) for FTS operations
// against the named attached database.
func New(db *sql.DB, database string) *Manager {
	return &Manager{db: db, database: database}
}

func (m *Manager) qualify(name string) string {
	if m.database == "" {
		return name
	}
	return fmt.Sprintf("%q.%s", m.database, name)
}

// InitDB registers the tokenizer and module wiring (spec §4.6). fts5 ships
// compiled into modernc.org/sqlite, so there is no driver-side registration
// step; this validates that every fulltext-indexed property has a usable
// column name before CreateTable relies on it.
func (m *Manager) InitDB(properties []*ontology.Property) error {
	for _, p := range properties {
		if p.FulltextIndexed && p.LocalName == "" {
			return fmt.Errorf("FTS init_db: property %s has no local name", p.URI)
		}
	}
	return nil
}

func fulltextColumns(properties []*ontology.Property) []string {
	var cols []string
	for _, p := range properties {
		if p.FulltextIndexed {
			cols = append(cols, p.LocalName)
		}
	}
	return cols
}

// CreateTable issues CREATE VIRTUAL TABLE ... USING fts5(...) with one
// column per fulltext-indexed property, plus the fts_view gathering
// projection. The fts5 table is an external-content table that reads its
// column values from fts_view, keyed by Resource.ID (spec §4.6).
func (m *Manager) CreateTable(ctx context.Context, moduleName string, properties []*ontology.Property) error {
	cols := fulltextColumns(properties)
	if len(cols) == 0 {
		return fmt.Errorf("FTS create_table: no fulltext-indexed properties")
	}
	m.columns = cols

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE VIRTUAL TABLE %s USING fts5(%s, content='fts_view', content_rowid='ROWID', tokenize='%s')",
		m.qualify("fts5"), strings.Join(quoteAll(cols), ", "), moduleName)
	if _, err := m.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("FTS create_table: %w", err)
	}

	if err := m.createView(ctx, properties); err != nil {
		return err
	}
	return nil
}

func (m *Manager) createView(ctx context.Context, properties []*ontology.Property) error {
	var projections []string
	for _, p := range properties {
		if !p.FulltextIndexed {
			continue
		}
		if p.MultipleValues {
			projections = append(projections, fmt.Sprintf(
				"(SELECT GROUP_CONCAT(\"Value\", ' ') FROM %s WHERE \"ID\" = base.\"ID\") AS %q",
				quoteIdent(p.TableName()), p.LocalName))
		} else {
			projections = append(projections, fmt.Sprintf("base.%q AS %q", p.LocalName, p.LocalName))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE VIEW %s AS SELECT base.\"ID\" AS \"ROWID\", %s FROM %s AS base",
		m.qualify("fts_view"), strings.Join(projections, ", "), quoteIdent(resourceTable))
	if _, err := m.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("FTS create_table (view): %w", err)
	}
	return nil
}

// AlterTable reconciles the fts5 column set with the current ontology
// shape. fts5 cannot add or remove columns in place, so a shape change
// drops and recreates both the table and the view, then rebuilds the
// token index (spec §4.6: "add/remove columns to match the current
// ontology shape").
func (m *Manager) AlterTable(ctx context.Context, moduleName string, properties []*ontology.Property) error {
	want := fulltextColumns(properties)
	if columnsEqual(m.columns, want) {
		return nil
	}
	if err := m.DeleteTable(ctx); err != nil {
		return err
	}
	if err := m.CreateTable(ctx, moduleName, properties); err != nil {
		return err
	}
	return m.RebuildTokens(ctx)
}

func columnsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DeleteTable drops the view and virtual table, ignoring either's absence.
func (m *Manager) DeleteTable(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, "DROP VIEW IF EXISTS "+m.qualify("fts_view")); err != nil {
		return fmt.Errorf("FTS delete_table (view): %w", err)
	}
	if _, err := m.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+m.qualify("fts5")); err != nil {
		return fmt.Errorf("FTS delete_table: %w", err)
	}
	m.columns = nil
	return nil
}

// RebuildTokens issues fts5's 'rebuild' special command, recomputing the
// token index from fts_view's current contents.
func (m *Manager) RebuildTokens(ctx context.Context) error {
	query := fmt.Sprintf("INSERT INTO %s(%s) VALUES ('rebuild')", m.qualify("fts5"), "fts5")
	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("FTS rebuild_tokens: %w", err)
	}
	return nil
}

func quoteIdent(name string) string {
	return fmt.Sprintf("%q", name)
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}
