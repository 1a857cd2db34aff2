package ontology

import (
	"sort"
	"sync"

	"github.com/mimir-aip/ontostore/internal/obslog"
)

const rdfTypeURI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// ResourceResolver looks up a persisted resource row by URI, used for the
// lazy-materialization fallback of GetClassByURI/GetPropertyByURI (spec
// §4.1): "An absent class/property URI that matches a persisted row
// triggers lazy materialization." The SQL interface implements this against
// the Resource table; tests may supply a stub.
type ResourceResolver interface {
	ResolveURI(uri string) (id int64, ok bool)
}

// Ontology groups a batch of namespaces/classes/properties loaded together
// (typically from one fixture file), for bulk registration via AddOntology.
type Ontology struct {
	Namespaces []*Namespace
	Classes    []*Class
	Properties []*Property
}

// Registry is the process-wide ontology lookup table of spec §3/§4.1: the
// only strong owner of Namespace, Class and Property values. Callers receive
// borrowed pointers; cross-references between entities are likewise
// non-owning pointers resolved by this Registry at load time.
type Registry struct {
	mu sync.RWMutex

	namespacesByURI map[string]*Namespace
	classesByURI    map[string]*Class
	propertiesByURI map[string]*Property
	idToURI         map[int64]string
	sortedClasses   []*Class

	rdfType  *Property
	resolver ResourceResolver
}

// NewRegistry constructs an initialized, empty Registry. Init() need not be
// called separately; it exists (idempotent) to match spec §3's lifecycle
// description for callers that construct a zero Registry another way.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Init()
	return r
}

// Init (re)initializes the registry's lookup tables. It is idempotent: a
// second call on an already-initialized registry leaves existing entries in
// place only if they haven't been cleared by Shutdown first.
func (r *Registry) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.namespacesByURI == nil {
		r.namespacesByURI = make(map[string]*Namespace)
	}
	if r.classesByURI == nil {
		r.classesByURI = make(map[string]*Class)
	}
	if r.propertiesByURI == nil {
		r.propertiesByURI = make(map[string]*Property)
	}
	if r.idToURI == nil {
		r.idToURI = make(map[int64]string)
	}
}

// Shutdown releases every entity the registry owns. A subsequent Init()
// yields an empty registry.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespacesByURI = nil
	r.classesByURI = nil
	r.propertiesByURI = nil
	r.idToURI = nil
	r.sortedClasses = nil
	r.rdfType = nil
}

// SetResourceResolver wires the persisted-row lookup used for lazy
// materialization of stub entities.
func (r *Registry) SetResourceResolver(resolver ResourceResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolver = resolver
}

// AddNamespace inserts or replaces the namespace at n.URI.
func (r *Registry) AddNamespace(n *Namespace) {
	if n == nil {
		panic("ontology: AddNamespace called with nil Namespace")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespacesByURI[n.URI] = n
}

// AddClass inserts or replaces the class at c.URI.
func (r *Registry) AddClass(c *Class) {
	if c == nil {
		panic("ontology: AddClass called with nil Class")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classesByURI[c.URI] = c
	r.sortedClasses = nil
	if c.ID != 0 {
		r.idToURI[c.ID] = c.URI
	}
}

// AddProperty inserts or replaces the property at p.URI.
func (r *Registry) AddProperty(p *Property) {
	if p == nil {
		panic("ontology: AddProperty called with nil Property")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.propertiesByURI[p.URI] = p
	if p.ID != 0 {
		r.idToURI[p.ID] = p.URI
	}
	if p.URI == rdfTypeURI {
		r.rdfType = p
	}
}

// AddOntology bulk-registers every namespace, class and property in o.
func (r *Registry) AddOntology(o *Ontology) {
	for _, n := range o.Namespaces {
		r.AddNamespace(n)
	}
	for _, c := range o.Classes {
		r.AddClass(c)
	}
	for _, p := range o.Properties {
		r.AddProperty(p)
	}
}

// AddIDURIPair records the id<->uri association for an already-registered
// class or property, used once a row is first persisted and assigned a
// rowid.
func (r *Registry) AddIDURIPair(id int64, uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idToURI[id] = uri
	if c, ok := r.classesByURI[uri]; ok {
		c.ID = id
	}
	if p, ok := r.propertiesByURI[uri]; ok {
		p.ID = id
	}
}

// GetNamespaceByURI returns the namespace registered at uri, if any.
func (r *Registry) GetNamespaceByURI(uri string) (*Namespace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.namespacesByURI[uri]
	return n, ok
}

// GetClassByURI returns the class registered at uri. If none is registered
// but a ResourceResolver has been wired and reports a persisted row for uri,
// a stub Class (URI and ID only) is materialized, registered, and returned
// (spec §4.1 lazy materialization).
func (r *Registry) GetClassByURI(uri string) (*Class, bool) {
	r.mu.RLock()
	c, ok := r.classesByURI[uri]
	resolver := r.resolver
	r.mu.RUnlock()
	if ok {
		return c, true
	}
	if resolver == nil {
		return nil, false
	}
	id, found := resolver.ResolveURI(uri)
	if !found {
		return nil, false
	}
	stub := &Class{URI: uri, ID: id, isNew: false}
	r.AddClass(stub)
	obslog.Get().Debug("lazily materialized class stub",
		obslog.String("uri", uri), obslog.Component("ontology"))
	return stub, true
}

// GetPropertyByURI mirrors GetClassByURI for properties.
func (r *Registry) GetPropertyByURI(uri string) (*Property, bool) {
	r.mu.RLock()
	p, ok := r.propertiesByURI[uri]
	resolver := r.resolver
	r.mu.RUnlock()
	if ok {
		return p, true
	}
	if resolver == nil {
		return nil, false
	}
	id, found := resolver.ResolveURI(uri)
	if !found {
		return nil, false
	}
	stub := &Property{URI: uri, ID: id, MultipleValues: true, isNew: false}
	r.AddProperty(stub)
	obslog.Get().Debug("lazily materialized property stub",
		obslog.String("uri", uri), obslog.Component("ontology"))
	return stub, true
}

// GetURIByID resolves a row id back to its URI.
func (r *Registry) GetURIByID(id int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uri, ok := r.idToURI[id]
	return uri, ok
}

// GetRDFType returns the distinguished rdf:type Property, cached on first
// AddProperty call that registers it.
func (r *Registry) GetRDFType() (*Property, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.rdfType == nil {
		return nil, false
	}
	return r.rdfType, true
}

// Sort stably sorts the class list by LocalName; callers may rely on
// ordering after this call until the next AddClass.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebuildSortedClassesLocked()
}

func (r *Registry) rebuildSortedClassesLocked() {
	classes := make([]*Class, 0, len(r.classesByURI))
	for _, c := range r.classesByURI {
		classes = append(classes, c)
	}
	sort.SliceStable(classes, func(i, j int) bool {
		return classes[i].LocalName < classes[j].LocalName
	})
	r.sortedClasses = classes
}

// SortedClasses returns the class list as of the last Sort() call.
func (r *Registry) SortedClasses() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Class(nil), r.sortedClasses...)
}

// PendingSchemaChanges returns every class and property still marked new
// (no row/edge table created or altered for it yet), for the SQL interface
// and FTS integration to act on when the ontology is (re)loaded.
func (r *Registry) PendingSchemaChanges() (classes []*Class, properties []*Property) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.classesByURI {
		if c.isNew {
			classes = append(classes, c)
		}
	}
	for _, p := range r.propertiesByURI {
		if p.isNew {
			properties = append(properties, p)
		}
	}
	return classes, properties
}

// NewClass creates and registers a Class for uri, deriving LocalName from
// the registry's own namespace table.
func (r *Registry) NewClass(uri string) *Class {
	c := newClass(uri, r.GetNamespaceByURI)
	r.AddClass(c)
	return c
}

// NewProperty creates and registers a Property for uri.
func (r *Registry) NewProperty(uri string) *Property {
	p := newProperty(uri, r.GetNamespaceByURI)
	r.AddProperty(p)
	return p
}
