package sparqlfn

import (
	"fmt"

	"github.com/mimir-aip/ontostore/pkg/ontology"
)

// DataType implements data_type(code): maps an integer matching the
// Property.data_type enumeration of spec §3 to its XSD/RDF URI.
func DataType(code int) (string, error) {
	uri, ok := ontology.DataTypeURI(code)
	if !ok {
		return "", fmt.Errorf("data_type: no URI for code %d", code)
	}
	return uri, nil
}
