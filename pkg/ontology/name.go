package ontology

import (
	"strings"

	"github.com/mimir-aip/ontostore/internal/obslog"
)

// deriveLocalName implements the algorithm of spec §4.2: split uri on its
// last '#', falling back to its last '/', look up the namespace for the
// portion up to and including the separator, and join its prefix with the
// tail as "prefix:tail". nsLookup resolves a namespace URI (including the
// trailing separator) to a *Namespace.
func deriveLocalName(uri string, nsLookup func(nsURI string) (*Namespace, bool)) string {
	sep := strings.LastIndexByte(uri, '#')
	if sep < 0 {
		sep = strings.LastIndexByte(uri, '/')
	}
	if sep < 0 {
		obslog.Get().Warn("uri has no '#' or '/' separator, local_name left empty",
			obslog.String("uri", uri), obslog.Component("ontology"))
		return ""
	}

	nsURI := uri[:sep+1]
	tail := uri[sep+1:]

	ns, ok := nsLookup(nsURI)
	if !ok {
		obslog.Get().Warn("no namespace registered for uri prefix",
			obslog.String("uri", uri), obslog.String("namespace_uri", nsURI),
			obslog.Component("ontology"))
		return ""
	}
	return ns.Prefix + ":" + tail
}
