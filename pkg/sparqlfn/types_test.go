package sparqlfn

import (
	"testing"

	"github.com/mimir-aip/ontostore/pkg/ontology"
)

func TestDataTypeKnownCode(t *testing.T) {
	got, err := DataType(int(ontology.IntegerType))
	if err != nil {
		t.Fatalf("DataType: %v", err)
	}
	if got != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Errorf("DataType(IntegerType) = %q", got)
	}
}

func TestDataTypeUnknownCode(t *testing.T) {
	if _, err := DataType(999); err == nil {
		t.Error("expected error for an unrecognized data type code")
	}
}
