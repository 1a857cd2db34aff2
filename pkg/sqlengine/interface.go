// Package sqlengine is the SQL interface layer of spec §4.3: it owns the
// SQLite handle, the prepared-statement MRUs, and the cursor/statement types
// built on top of database/sql and modernc.org/sqlite.
package sqlengine

import (
	"context"
	"crypto/md5"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mimir-aip/ontostore/internal/obslog"
	"github.com/mimir-aip/ontostore/pkg/ontology"
)

// Flags mirrors the open-mode bitset of spec §4.3.
type Flags int

const (
	FlagReadOnly Flags = 1 << iota
	FlagInMemory
	FlagUseMutex
)

const defaultMRUSize = 50

// Interface is one opened connection to the backing store: statements,
// cursors and the two MRUs are all scoped to it. When FlagUseMutex is set,
// every public entry point is serialized by mu (spec §4.3/§5).
type Interface struct {
	db       *sql.DB
	flags    Flags
	registry *ontology.Registry

	mu sync.Mutex

	selectMRU *mru
	updateMRU *mru

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	log *obslog.Logger
}

// Open opens (or attaches to, for an in-memory shared-cache key) the
// backing database named by nameOrKey. registry is stored on the Interface
// and may be nil; the print_iri, uuid and bnode functions do not use it,
// they query the Resource table of the most recently opened Interface.
func Open(nameOrKey string, flags Flags, registry *ontology.Registry) (*Interface, error) {
	ensureFunctionsRegistered()
	if registerErr != nil {
		return nil, newError(KindOpenError, "register functions", registerErr)
	}

	dsn := buildDSN(nameOrKey, flags)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, newError(KindOpenError, "open "+nameOrKey, err)
	}

	// A single physical connection matches the "single writer thread
	// assumed per interface" model of spec §5: statement/cursor pinning
	// logic below assumes every call for this Interface runs against the
	// same SQLite connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, newError(KindOpenError, "ping "+nameOrKey, err)
	}

	iface := &Interface{
		db:        db,
		flags:     flags,
		registry:  registry,
		selectMRU: newMRU(defaultMRUSize),
		updateMRU: newMRU(defaultMRUSize),
		log:       obslog.Get(),
	}

	if err := iface.ResetCollator(); err != nil {
		db.Close()
		return nil, err
	}

	activeResolver.Store(iface)

	return iface, nil
}

func buildDSN(nameOrKey string, flags Flags) string {
	if flags&FlagInMemory != 0 {
		key := fmt.Sprintf("%x", md5.Sum([]byte(nameOrKey)))
		return fmt.Sprintf("file:%s?mode=memory&cache=shared", key)
	}
	params := "_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL"
	if flags&FlagReadOnly != 0 {
		params += "&mode=ro"
	}
	return fmt.Sprintf("file:%s?%s", nameOrKey, params)
}

// AttachDatabase ATTACHes file (or, when empty, a shared in-memory database
// keyed by the MD5 of name) under the alias name (spec §4.3).
func (iface *Interface) AttachDatabase(ctx context.Context, file, name string) error {
	var attachURI string
	if file == "" {
		key := fmt.Sprintf("%x", md5.Sum([]byte(name)))
		attachURI = fmt.Sprintf("file:%s?mode=memory&cache=shared", key)
	} else {
		attachURI = file
	}
	stmt := fmt.Sprintf("ATTACH DATABASE '%s' AS %s", attachURI, quoteIdent(name))
	if _, err := iface.db.ExecContext(ctx, stmt); err != nil {
		return newError(classify(err), "attach "+name, err)
	}
	return nil
}

// DetachDatabase DETACHes the alias name.
func (iface *Interface) DetachDatabase(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("DETACH DATABASE %s", quoteIdent(name))
	if _, err := iface.db.ExecContext(ctx, stmt); err != nil {
		return newError(classify(err), "detach "+name, err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

func (iface *Interface) mruFor(kind CacheKind) *mru {
	switch kind {
	case CacheSelect:
		return iface.selectMRU
	case CacheUpdate:
		return iface.updateMRU
	default:
		return nil
	}
}

// CreateStatement returns a Statement prepared from text. For CacheSelect
// and CacheUpdate, a non-borrowed cache hit is reused (and promoted to
// MRU); a borrowed hit or a miss prepares a fresh statement, the miss case
// being additionally inserted into the cache (spec §4.3/§4.7).
func (iface *Interface) CreateStatement(ctx context.Context, kind CacheKind, text string) (*Statement, error) {
	if iface.flags&FlagUseMutex != 0 {
		iface.mu.Lock()
		defer iface.mu.Unlock()
	}

	cache := iface.mruFor(kind)
	if cache != nil {
		if stmt, borrowed, found := cache.lookup(text); found && !borrowed {
			cache.setBorrowed(text, true)
			stmt.Reset()
			return stmt, nil
		}
	}

	prepared, err := iface.db.PrepareContext(ctx, text)
	if err != nil {
		return nil, newError(classify(err), "prepare", err)
	}
	stmt := newStatement(text, kind, prepared)

	if cache != nil {
		// A borrowed hit (or a genuine miss) both land here: the caller
		// gets a freshly prepared, uncached-in-effect statement when the
		// cached slot is already in use, matching spec §4.3's borrow
		// substitution rule, but it still counts as a cache miss for a
		// brand new SQL text and is inserted for next time.
		if !cache.contains(text) {
			cache.insert(text, stmt)
			cache.setBorrowed(text, true)
		}
	}
	return stmt, nil
}

// CreateVStatement composes text via fmt.Sprintf before preparing it (spec
// §4.3's create_vstatement).
func (iface *Interface) CreateVStatement(ctx context.Context, kind CacheKind, format string, args ...any) (*Statement, error) {
	return iface.CreateStatement(ctx, kind, fmt.Sprintf(format, args...))
}

// releaseStatement unborrows a cached statement (Execute completion, cursor
// close) or closes an uncached one outright.
func (iface *Interface) releaseStatement(stmt *Statement) {
	if stmt.kind == CacheNone {
		stmt.close()
		return
	}
	cache := iface.mruFor(stmt.kind)
	if cache != nil {
		if el, ok := cache.entries[stmt.text]; ok && el.Value.(*mruEntry).stmt == stmt {
			cache.setBorrowed(stmt.text, false)
			return
		}
	}
	// Borrowed-hit substitute: not the cached instance, so it owns its own
	// lifetime.
	stmt.close()
}

// ExecuteQuery is the one-shot convenience form of spec §4.3: compose,
// execute, and step through format/args without touching either MRU.
func (iface *Interface) ExecuteQuery(ctx context.Context, format string, args ...any) (*sql.Rows, error) {
	rows, err := iface.db.QueryContext(ctx, fmt.Sprintf(format, args...))
	if err != nil {
		return nil, newError(classify(err), "execute_query", err)
	}
	return rows, nil
}

// Execute steps stmt to completion (an INSERT/UPDATE/DELETE), retrying
// bounded backoff on SQLITE_BUSY or SQLITE_LOCKED as the teacher's own
// retryOnBusy does.
func (iface *Interface) Execute(ctx context.Context, stmt *Statement) error {
	const maxRetries = 5
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := stmt.execContext(ctx)
		if err == nil {
			return nil
		}
		if !isBusy(err) {
			return newError(classify(err), "execute", err)
		}
		lastErr = err
		backoff := time.Duration(10*(1<<uint(attempt))) * time.Millisecond
		select {
		case <-ctx.Done():
			return newError(KindInterrupted, "execute", ctx.Err())
		case <-time.After(backoff):
		}
	}
	return newError(classify(lastErr), "execute (exhausted retries)", lastErr)
}

// StartCursor prepares a raw cursor over stmt: every SQLite column is
// reported, with no value-type shadow-column interpretation.
func (iface *Interface) StartCursor(ctx context.Context, stmt *Statement) (*Cursor, error) {
	rows, err := stmt.queryContext(ctx)
	if err != nil {
		return nil, newError(classify(err), "start_cursor", err)
	}
	return newCursor(iface, stmt, rows, 0)
}

// StartSparqlCursor prepares a cursor that treats the first nVisibleColumns
// as user-visible and the next nVisibleColumns as value-type shadow
// annotations (spec §4.4).
func (iface *Interface) StartSparqlCursor(ctx context.Context, stmt *Statement, nVisibleColumns int) (*Cursor, error) {
	rows, err := stmt.queryContext(ctx)
	if err != nil {
		return nil, newError(classify(err), "start_sparql_cursor", err)
	}
	return newCursor(iface, stmt, rows, nVisibleColumns)
}

// GetValues steps stmt to completion, collecting column 0 of every row
// typed per propertyType.
func (iface *Interface) GetValues(ctx context.Context, stmt *Statement, propertyType PropertyValueType) ([]any, error) {
	rows, err := stmt.queryContext(ctx)
	if err != nil {
		return nil, newError(classify(err), "get_values", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return nil, newError(classify(err), "get_values scan", err)
		}
		out = append(out, convertPropertyValue(raw, propertyType))
	}
	if err := rows.Err(); err != nil {
		return nil, newError(classify(err), "get_values", err)
	}
	return out, nil
}

// PropertyValueType selects the target Go type GetValues coerces column 0
// into.
type PropertyValueType int

const (
	PropertyValueString PropertyValueType = iota
	PropertyValueInteger
	PropertyValueDouble
	PropertyValueBoolean
)

func convertPropertyValue(raw any, t PropertyValueType) any {
	switch t {
	case PropertyValueInteger:
		v, _ := asInt64(raw)
		return v
	case PropertyValueDouble:
		switch n := raw.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}
		return float64(0)
	case PropertyValueBoolean:
		s, _ := asString(raw)
		return s == "true" || s == "1"
	default:
		s, _ := asString(raw)
		return s
	}
}

// SetMaxStmtCacheSize resizes the given MRU; the floor of 3 from spec §4.7
// is enforced by mru.setMax.
func (iface *Interface) SetMaxStmtCacheSize(kind CacheKind, n int) {
	if cache := iface.mruFor(kind); cache != nil {
		cache.setMax(n)
	}
}

// ReleaseMemory drops both MRUs and asks SQLite to shrink its own caches.
func (iface *Interface) ReleaseMemory(ctx context.Context) error {
	iface.selectMRU.clear()
	iface.updateMRU.clear()
	_, err := iface.db.ExecContext(ctx, "PRAGMA shrink_memory")
	if err != nil {
		return newError(classify(err), "release_memory", err)
	}
	return nil
}

// ResetCollator re-registers the default and title collations (spec §4.3).
// Collations are registered globally by modernc.org/sqlite. The title
// collation always uses the fixed article list "the", "a", "an"; no
// configured list is read.
func (iface *Interface) ResetCollator() error {
	return registerCollations()
}

// WalCheckpoint runs a PASSIVE or FULL wal_checkpoint.
func (iface *Interface) WalCheckpoint(ctx context.Context, blocking bool) error {
	mode := "PASSIVE"
	if blocking {
		mode = "FULL"
	}
	_, err := iface.db.ExecContext(ctx, fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode))
	if err != nil {
		return newError(classify(err), "wal_checkpoint", err)
	}
	return nil
}

// BeginCancellable derives a cancellable context from parent and records
// its CancelFunc as this Interface's single in-flight cancellation token
// (spec §5: "each interface holds at most one in-flight cancellation
// token").
func (iface *Interface) BeginCancellable(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	iface.cancelMu.Lock()
	iface.cancel = cancel
	iface.cancelMu.Unlock()
	return ctx
}

// Cancel invokes the current in-flight cancellation token, if any.
func (iface *Interface) Cancel() {
	iface.cancelMu.Lock()
	cancel := iface.cancel
	iface.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ResolveURI implements ontology.ResourceResolver against the Resource
// table, wiring the registry's lazy-materialization fallback to this
// Interface's backing store.
func (iface *Interface) ResolveURI(uri string) (int64, bool) {
	var id int64
	err := iface.db.QueryRow("SELECT ID FROM Resource WHERE Uri = ?", uri).Scan(&id)
	if err != nil {
		return 0, false
	}
	return id, true
}

// URIForID implements sparqlfn.ResourceURIResolver.
func (iface *Interface) URIForID(id int64) (string, bool) {
	var uri string
	err := iface.db.QueryRow("SELECT Uri FROM Resource WHERE ID = ?", id).Scan(&uri)
	if err != nil {
		return "", false
	}
	return uri, true
}

// URIExists implements sparqlfn.URIExistsChecker.
func (iface *Interface) URIExists(uri string) (bool, error) {
	var id int64
	err := iface.db.QueryRow("SELECT ID FROM Resource WHERE Uri = ?", uri).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, newError(classify(err), "uri_exists", err)
	}
	return true, nil
}

// DB exposes the underlying *sql.DB for callers, such as pkg/fts, that need
// to issue raw DDL/DML the Statement/Cursor abstraction doesn't cover.
func (iface *Interface) DB() *sql.DB { return iface.db }

// Close releases both MRUs and closes the underlying database handle.
func (iface *Interface) Close() error {
	iface.selectMRU.clear()
	iface.updateMRU.clear()
	if err := iface.db.Close(); err != nil {
		return newError(KindOpenError, "close", err)
	}
	return nil
}
