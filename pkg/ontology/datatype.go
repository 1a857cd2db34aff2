package ontology

import "strings"

// DataType is the Property.data_type enumeration of spec §3.
type DataType int

const (
	Unknown DataType = iota
	StringType
	BooleanType
	IntegerType
	DoubleType
	DateType
	DateTimeType
	ResourceType
	LangStringType
)

func (d DataType) String() string {
	switch d {
	case StringType:
		return "string"
	case BooleanType:
		return "boolean"
	case IntegerType:
		return "integer"
	case DoubleType:
		return "double"
	case DateType:
		return "date"
	case DateTimeType:
		return "dateTime"
	case ResourceType:
		return "resource"
	case LangStringType:
		return "langString"
	default:
		return "unknown"
	}
}

// rangeDataTypes is the fixed table from spec §3 mapping a Property's range
// URI to its data_type. Any range URI not in this table yields ResourceType.
var rangeDataTypes = map[string]DataType{
	"http://www.w3.org/2001/XMLSchema#string":               StringType,
	"http://www.w3.org/2001/XMLSchema#boolean":               BooleanType,
	"http://www.w3.org/2001/XMLSchema#integer":               IntegerType,
	"http://www.w3.org/2001/XMLSchema#double":                DoubleType,
	"http://www.w3.org/2001/XMLSchema#date":                  DateType,
	"http://www.w3.org/2001/XMLSchema#dateTime":               DateTimeType,
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#langString":   LangStringType,
}

// DataTypeForRange implements the range->data_type function of spec §3.
func DataTypeForRange(rangeURI string) DataType {
	if dt, ok := rangeDataTypes[strings.TrimSpace(rangeURI)]; ok {
		return dt
	}
	return ResourceType
}

// DataTypeURI is the inverse mapping used by the data_type() SPARQL function
// (spec §4.5): given an integer code matching this enumeration, return the
// XSD/RDF URI string.
func DataTypeURI(code int) (string, bool) {
	dt := DataType(code)
	for uri, candidate := range rangeDataTypes {
		if candidate == dt {
			return uri, true
		}
	}
	if dt == ResourceType {
		return "http://www.w3.org/2000/01/rdf-schema#Resource", true
	}
	return "", false
}
