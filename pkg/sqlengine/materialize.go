package sqlengine

import (
	"context"
	"strconv"
	"time"

	"github.com/mimir-aip/ontostore/pkg/langstring"
	"github.com/mimir-aip/ontostore/pkg/models"
	"github.com/mimir-aip/ontostore/pkg/tsvalue"
)

// Materialize drains cursor to completion and assembles its rows into a
// models.QueryResult, translating each column's GetValueType into the W3C
// SPARQL 1.1 Query Results term shape (spec §4.4, §6). started is the time
// the query began executing, used to fill QueryResult.Duration.
func Materialize(ctx context.Context, cursor *Cursor, queryType models.QueryType, started time.Time) (*models.QueryResult, error) {
	n := cursor.GetNColumns()
	variables := make([]string, n)
	for col := 0; col < n; col++ {
		variables[col] = cursor.GetVariableName(col)
	}

	result := &models.QueryResult{
		Variables: variables,
		QueryType: queryType,
	}

	for {
		ok, err := cursor.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		row := make(models.BindingRow, n)
		for col := 0; col < n; col++ {
			bv, bound := bindingForColumn(cursor, col)
			if bound {
				row[variables[col]] = bv
			}
		}
		result.Bindings = append(result.Bindings, row)
	}

	if queryType == models.QueryTypeAsk {
		b := len(result.Bindings) > 0
		result.Boolean = &b
	}

	result.Duration = time.Since(started)
	return result, nil
}

// bindingForColumn converts a single cursor column into its SPARQL binding
// term, or reports bound=false for an UNBOUND value.
func bindingForColumn(cursor *Cursor, col int) (bv models.BindingValue, bound bool) {
	switch cursor.GetValueType(col) {
	case tsvalue.Unbound:
		return models.BindingValue{}, false
	case tsvalue.URI:
		s, _ := cursor.GetString(col)
		return models.BindingValue{Type: "uri", Value: s}, true
	case tsvalue.BlankNode:
		s, _ := cursor.GetString(col)
		return models.BindingValue{Type: "bnode", Value: s}, true
	case tsvalue.LangString:
		blob, ok := cursor.GetBlob(col)
		if !ok {
			return models.BindingValue{Type: "literal"}, true
		}
		text, lang, err := langstring.Decode(blob)
		if err != nil {
			return models.BindingValue{Type: "literal"}, true
		}
		return models.BindingValue{Type: "literal", Value: text, Lang: lang}, true
	case tsvalue.Boolean:
		return models.BindingValue{
			Type:     "literal",
			Value:    strconv.FormatBool(cursor.GetBoolean(col)),
			Datatype: "http://www.w3.org/2001/XMLSchema#boolean",
		}, true
	case tsvalue.Integer:
		return models.BindingValue{
			Type:     "literal",
			Value:    strconv.FormatInt(cursor.GetInteger(col), 10),
			Datatype: "http://www.w3.org/2001/XMLSchema#integer",
		}, true
	case tsvalue.Double:
		return models.BindingValue{
			Type:     "literal",
			Value:    strconv.FormatFloat(cursor.GetDouble(col), 'g', -1, 64),
			Datatype: "http://www.w3.org/2001/XMLSchema#double",
		}, true
	case tsvalue.Date:
		s, _ := cursor.GetString(col)
		return models.BindingValue{Type: "literal", Value: s, Datatype: "http://www.w3.org/2001/XMLSchema#date"}, true
	case tsvalue.DateTime:
		s, _ := cursor.GetString(col)
		return models.BindingValue{Type: "literal", Value: s, Datatype: "http://www.w3.org/2001/XMLSchema#dateTime"}, true
	default:
		s, _ := cursor.GetString(col)
		return models.BindingValue{Type: "literal", Value: s}, true
	}
}
