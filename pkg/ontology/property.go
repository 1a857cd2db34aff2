package ontology

// Property is an RDF property as described in spec §3. Domain, Range and
// SecondaryIndex are non-owning references resolved against the owning
// Registry; DataType is derived from Range's URI via DataTypeForRange and
// must be kept in sync whenever Range changes (see SetRange).
type Property struct {
	URI             string
	LocalName       string
	ID              int64
	DataType        DataType
	Domain          *Class
	Range           *Class
	DomainIndexes   []*Class
	SuperProperties []*Property
	Weight          int
	Indexed         bool
	FulltextIndexed bool
	// MultipleValues defaults to true (spec §3): most properties are stored
	// in an edge table rather than as a column of the domain's row table.
	MultipleValues    bool
	InverseFunctional bool
	SecondaryIndex    *Property
	SourceLocation    SourceLocation

	tableName string
	isNew     bool
}

func newProperty(uri string, nsLookup func(string) (*Namespace, bool)) *Property {
	p := &Property{URI: uri, MultipleValues: true, Weight: 1, isNew: true}
	p.LocalName = deriveLocalName(uri, nsLookup)
	return p
}

// SetURI re-derives LocalName for uri, mirroring Class.SetURI.
func (p *Property) SetURI(uri string, nsLookup func(string) (*Namespace, bool)) {
	p.URI = uri
	p.LocalName = deriveLocalName(uri, nsLookup)
}

// SetRange sets Range and recomputes DataType from its URI (spec §3:
// "range URI determines data_type via a fixed table").
func (p *Property) SetRange(r *Class) {
	p.Range = r
	if r != nil {
		p.DataType = DataTypeForRange(r.URI)
	} else {
		p.DataType = Unknown
	}
}

// SetDomain sets Domain and invalidates the cached table name, since
// TableName is derived from the domain's LocalName.
func (p *Property) SetDomain(d *Class) {
	p.Domain = d
	p.tableName = ""
}

// SetMultipleValues updates MultipleValues, invalidating the cached table
// name if the value actually changed (spec §4.2: "Changing multiple_values
// invalidates the cached table_name").
func (p *Property) SetMultipleValues(multiple bool) {
	if p.MultipleValues == multiple {
		return
	}
	p.MultipleValues = multiple
	p.tableName = ""
}

// TableName returns the table this property's values live in: an edge table
// "{domain.local_name}_{property.local_name}" when MultipleValues, or the
// domain's own row table (the property is a column of it) otherwise
// (spec §4.2). It is computed lazily and cached until invalidated.
func (p *Property) TableName() string {
	if p.tableName != "" {
		return p.tableName
	}
	if p.Domain == nil {
		return ""
	}
	if p.MultipleValues {
		p.tableName = p.Domain.LocalName + "_" + p.LocalName
	} else {
		p.tableName = p.Domain.LocalName
	}
	return p.tableName
}

// IsNew reports whether this property has pending schema changes.
func (p *Property) IsNew() bool { return p.isNew }

// MarkPersisted clears the pending-schema-change bit.
func (p *Property) MarkPersisted() { p.isNew = false }
