package fts

import (
	"context"
	"fmt"
	"strings"
)

// UpdateText re-derives the fts5 index entry for rowid from fts_view's
// current contents (spec §4.6 update_text). fts5's external-content model
// means the row's text lives in fts_view already; this issues a single
// INSERT ... SELECT keyed by rowid rather than requiring the caller to
// supply the new column values directly, mirroring
// tracker_db_interface_sqlite_fts_update_text's fts_create_update_query.
func (m *Manager) UpdateText(ctx context.Context, rowid int64) error {
	if len(m.columns) == 0 {
		return fmt.Errorf("FTS update_text: no fulltext-indexed columns")
	}
	cols := strings.Join(quoteAll(m.columns), ", ")
	coalesce := strings.Join(quoteAll(m.columns), ", ")

	query := fmt.Sprintf(
		"INSERT INTO %s (ROWID, %s) SELECT ROWID, %s FROM %s WHERE ROWID = ? AND COALESCE(%s, NULL) IS NOT NULL",
		m.qualify("fts5"), cols, cols, m.qualify("fts_view"), coalesce)
	if _, err := m.db.ExecContext(ctx, query, rowid); err != nil {
		return fmt.Errorf("FTS update_text: %w", err)
	}
	return nil
}

// DeleteText removes rowid's entry from the fts5 index via the 'delete'
// special command, again sourcing the old column values straight from
// fts_view rather than from caller-supplied state (tracker_db_interface_
// sqlite_fts_delete_text's fts_create_delete_query).
func (m *Manager) DeleteText(ctx context.Context, rowid int64) error {
	if len(m.columns) == 0 {
		return fmt.Errorf("FTS delete_text: no fulltext-indexed columns")
	}
	cols := strings.Join(quoteAll(m.columns), ", ")
	coalesce := strings.Join(quoteAll(m.columns), ", ")

	query := fmt.Sprintf(
		"INSERT INTO %s (fts5, ROWID, %s) SELECT 'delete', ROWID, %s FROM %s WHERE ROWID = ? AND COALESCE(%s, NULL) IS NOT NULL",
		m.qualify("fts5"), cols, cols, m.qualify("fts_view"), coalesce)
	if _, err := m.db.ExecContext(ctx, query, rowid); err != nil {
		return fmt.Errorf("FTS delete_text: %w", err)
	}
	return nil
}
