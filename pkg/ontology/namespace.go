package ontology

// Namespace pairs a URI with a short prefix label, both unique within a
// Registry. Namespaces are created when an ontology file is loaded (or a
// persisted row is read) and are immutable thereafter (spec §3).
type Namespace struct {
	URI    string
	Prefix string
}
