package ontology

import "testing"

func newTestRegistryWithNamespace() *Registry {
	r := NewRegistry()
	r.AddNamespace(&Namespace{URI: "http://example.org/ns#", Prefix: "ex"})
	return r
}

func TestRegistryAddAndGetClass(t *testing.T) {
	r := newTestRegistryWithNamespace()
	c := r.NewClass("http://example.org/ns#Person")

	got, ok := r.GetClassByURI("http://example.org/ns#Person")
	if !ok {
		t.Fatal("class not found after NewClass")
	}
	if got != c {
		t.Error("GetClassByURI returned a different pointer than NewClass")
	}
	if got.LocalName != "ex:Person" {
		t.Errorf("LocalName = %q, want ex:Person", got.LocalName)
	}
}

func TestRegistryGetRDFType(t *testing.T) {
	r := newTestRegistryWithNamespace()
	r.AddNamespace(&Namespace{URI: "http://www.w3.org/1999/02/22-rdf-syntax-ns#", Prefix: "rdf"})
	rdfType := r.NewProperty(rdfTypeURI)

	got, ok := r.GetRDFType()
	if !ok {
		t.Fatal("GetRDFType not found")
	}
	if got != rdfType {
		t.Error("GetRDFType returned a different pointer")
	}
}

func TestRegistrySortOrdersByLocalName(t *testing.T) {
	r := newTestRegistryWithNamespace()
	r.NewClass("http://example.org/ns#Zebra")
	r.NewClass("http://example.org/ns#Apple")
	r.NewClass("http://example.org/ns#Mango")
	r.Sort()

	sorted := r.SortedClasses()
	if len(sorted) != 3 {
		t.Fatalf("len(sorted) = %d, want 3", len(sorted))
	}
	want := []string{"ex:Apple", "ex:Mango", "ex:Zebra"}
	for i, w := range want {
		if sorted[i].LocalName != w {
			t.Errorf("sorted[%d].LocalName = %q, want %q", i, sorted[i].LocalName, w)
		}
	}
}

func TestRegistryPendingSchemaChanges(t *testing.T) {
	r := newTestRegistryWithNamespace()
	c := r.NewClass("http://example.org/ns#Person")
	p := r.NewProperty("http://example.org/ns#name")

	classes, props := r.PendingSchemaChanges()
	if len(classes) != 1 || classes[0] != c {
		t.Errorf("PendingSchemaChanges classes = %v, want [%v]", classes, c)
	}
	if len(props) != 1 || props[0] != p {
		t.Errorf("PendingSchemaChanges properties = %v, want [%v]", props, p)
	}

	c.MarkPersisted()
	p.MarkPersisted()
	classes, props = r.PendingSchemaChanges()
	if len(classes) != 0 || len(props) != 0 {
		t.Errorf("PendingSchemaChanges after MarkPersisted = (%v, %v), want empty", classes, props)
	}
}

func TestRegistryShutdownThenInitIsEmpty(t *testing.T) {
	r := newTestRegistryWithNamespace()
	r.NewClass("http://example.org/ns#Person")
	r.Shutdown()
	r.Init()

	if _, ok := r.GetClassByURI("http://example.org/ns#Person"); ok {
		t.Error("class survived Shutdown+Init")
	}
	if _, ok := r.GetNamespaceByURI("http://example.org/ns#"); ok {
		t.Error("namespace survived Shutdown+Init")
	}
}

type fakeResolver struct {
	uris map[string]int64
}

func (f *fakeResolver) ResolveURI(uri string) (int64, bool) {
	id, ok := f.uris[uri]
	return id, ok
}

func TestRegistryLazyMaterializationViaResolver(t *testing.T) {
	r := newTestRegistryWithNamespace()
	r.SetResourceResolver(&fakeResolver{uris: map[string]int64{
		"http://example.org/ns#Ghost": 42,
	}})

	c, ok := r.GetClassByURI("http://example.org/ns#Ghost")
	if !ok {
		t.Fatal("expected lazy materialization to find a stub class")
	}
	if c.ID != 42 {
		t.Errorf("stub class ID = %d, want 42", c.ID)
	}
	if c.IsNew() {
		t.Error("lazily materialized class should not be IsNew (already persisted)")
	}

	// Second lookup must return the same registered instance, not create
	// another stub.
	again, ok := r.GetClassByURI("http://example.org/ns#Ghost")
	if !ok || again != c {
		t.Error("second GetClassByURI should return the cached stub")
	}
}

func TestRegistryLazyMaterializationMissReturnsFalse(t *testing.T) {
	r := newTestRegistryWithNamespace()
	r.SetResourceResolver(&fakeResolver{uris: map[string]int64{}})

	if _, ok := r.GetClassByURI("http://example.org/ns#Nowhere"); ok {
		t.Error("expected GetClassByURI to fail when resolver has no match")
	}
}

func TestRegistryAddIDURIPairUpdatesExistingEntity(t *testing.T) {
	r := newTestRegistryWithNamespace()
	c := r.NewClass("http://example.org/ns#Person")
	r.AddIDURIPair(7, "http://example.org/ns#Person")

	if c.ID != 7 {
		t.Errorf("class ID = %d, want 7", c.ID)
	}
	uri, ok := r.GetURIByID(7)
	if !ok || uri != "http://example.org/ns#Person" {
		t.Errorf("GetURIByID(7) = (%q, %v), want (http://example.org/ns#Person, true)", uri, ok)
	}
}
