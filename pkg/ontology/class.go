package ontology

// SourceLocation records where an ontology entity was declared, for
// diagnostics when an ontology file is reloaded with a conflicting
// definition.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// Class is an OWL/RDFS class as described in spec §3. Cross-references
// (SuperClasses, DomainIndexes) are non-owning: they are *Class/*Property
// values handed out by the owning Registry, never constructed directly by
// callers outside this package.
type Class struct {
	URI            string
	LocalName      string
	ID             int64
	SuperClasses   []*Class
	DomainIndexes  []*Property
	Notify         bool
	SourceLocation SourceLocation

	// isNew tracks whether this class has been persisted (a row/edge table
	// created for it) since it was added or last changed; see
	// Registry.PendingSchemaChanges and SPEC_FULL.md §3.
	isNew bool
}

// newClass creates a Class for uri, deriving LocalName via nsLookup. It is
// used by Registry.NewClass and by tests that need a Class without going
// through a full ontology fixture.
func newClass(uri string, nsLookup func(string) (*Namespace, bool)) *Class {
	c := &Class{URI: uri, isNew: true}
	c.LocalName = deriveLocalName(uri, nsLookup)
	return c
}

// SetURI re-derives LocalName for uri. Re-setting a Class's URI to the same
// value yields the same LocalName (spec §8 invariant).
func (c *Class) SetURI(uri string, nsLookup func(string) (*Namespace, bool)) {
	c.URI = uri
	c.LocalName = deriveLocalName(uri, nsLookup)
}

// IsNew reports whether this class has pending schema changes (no row table
// created yet, or structural changes since the last create/alter pass).
func (c *Class) IsNew() bool { return c.isNew }

// MarkPersisted clears the pending-schema-change bit after the SQL interface
// has created or altered this class's row table.
func (c *Class) MarkPersisted() { c.isNew = false }
