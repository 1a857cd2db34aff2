package sqlengine

import (
	"database/sql/driver"
	"fmt"
	"sync"
	"sync/atomic"

	"modernc.org/sqlite"

	"github.com/mimir-aip/ontostore/pkg/collation"
	"github.com/mimir-aip/ontostore/pkg/sparqlfn"
)

// activeResolver is the Interface most recently Open()ed, used by the
// process-global UDFs (print_iri, uuid, bnode) that need Resource-table
// lookups. modernc.org/sqlite registers scalar functions once per process
// image, not per connection, so a single active backing store is assumed —
// consistent with spec.md's Non-goal of multi-writer concurrency across
// processes; within one process, the most recently opened Interface wins.
var activeResolver atomic.Pointer[Interface]

var registerOnce sync.Once
var registerErr error

// ensureFunctionsRegistered registers every SPARQL helper UDF exactly once
// per process (spec §4.5: "each is registered at interface open").
func ensureFunctionsRegistered() {
	registerOnce.Do(func() {
		registerErr = registerFunctions()
	})
}

type scalarFunc func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error)

func registerFunctions() error {
	type fn struct {
		name  string
		nArgs int
		f     scalarFunc
	}
	fns := []fn{
		{"haversine_distance", 4, wrap4Float(sparqlfn.HaversineDistance)},
		{"cartesian_distance", 4, wrap4Float(sparqlfn.CartesianDistance)},
		{"format_time", 1, wrapFormatTime},
		{"timestamp", 1, wrapTimestamp},
		{"time_sort", 1, wrapTimeSort},
		{"timezone_duration", 1, wrapTimezoneDuration},
		{"timezone_string", 1, wrapTimezoneString},
		{"timezone", 1, wrapTimezone},
		{"string_from_filename", 1, wrap1String(sparqlfn.StringFromFilename)},
		{"uri_is_parent", 2, wrapUriIsParent},
		{"uri_is_descendant", -1, wrapUriIsDescendant},
		{"encode_for_uri", 1, wrap1String(sparqlfn.EncodeForURI)},
		{"uri", 1, wrap1String(sparqlfn.URI)},
		{"regex", -1, wrapRegex},
		{"replace", -1, wrapReplace},
		{"lower_case", 1, wrap1String(sparqlfn.LowerCase)},
		{"upper_case", 1, wrap1String(sparqlfn.UpperCase)},
		{"case_fold", 1, wrap1String(sparqlfn.CaseFold)},
		{"normalize", 2, wrapNormalize},
		{"unaccent", 1, wrap1String(sparqlfn.Unaccent)},
		{"strip_punctuation", 1, wrap1String(sparqlfn.StripPunctuation)},
		{"string_before", 2, wrap2String(sparqlfn.StringBefore)},
		{"string_after", 2, wrap2String(sparqlfn.StringAfter)},
		{"checksum", 2, wrapChecksum},
		{"langmatches", 2, wrapLangmatches},
		{"strlang", 2, wrapStrlang},
		{"print_iri", 1, wrapPrintIri},
		{"ceil", 1, wrap1Float(sparqlfn.Ceil)},
		{"floor", 1, wrap1Float(sparqlfn.Floor)},
		{"rand", 0, wrapRand},
		{"data_type", 1, wrapDataType},
		{"uuid", 1, wrapUuid},
		{"bnode", 0, wrapBnode},
	}

	for _, f := range fns {
		if err := sqlite.RegisterScalarFunction(f.name, f.nArgs, f.f); err != nil {
			return fmt.Errorf("sqlengine: register %s: %w", f.name, err)
		}
	}
	return registerCollations()
}

// registerCollations (re-)registers the default and title collations of
// spec §4.5; safe to call repeatedly (ResetCollator).
func registerCollations() error {
	if err := sqlite.RegisterCollationFunction("ONTOSTORE_DEFAULT", func(a, b string) int {
		return collation.Compare(a, b)
	}); err != nil {
		return fmt.Errorf("sqlengine: register default collation: %w", err)
	}
	titleArticles := []string{"the", "a", "an"}
	if err := sqlite.RegisterCollationFunction("ONTOSTORE_TITLE", func(a, b string) int {
		return collation.TitleCompare(a, b, titleArticles)
	}); err != nil {
		return fmt.Errorf("sqlengine: register title collation: %w", err)
	}
	return nil
}

func argString(args []driver.Value, i int) (string, bool) {
	if i >= len(args) || args[i] == nil {
		return "", false
	}
	switch v := args[i].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return fmt.Sprint(v), true
	}
}

func argFloat(args []driver.Value, i int) float64 {
	switch v := args[i].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func wrap1String(f func(string) string) scalarFunc {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		s, _ := argString(args, 0)
		return f(s), nil
	}
}

func wrap2String(f func(string, string) string) scalarFunc {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		a, _ := argString(args, 0)
		b, _ := argString(args, 1)
		return f(a, b), nil
	}
}

func wrap1Float(f func(float64) float64) scalarFunc {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		return f(argFloat(args, 0)), nil
	}
}

func wrap4Float(f func(float64, float64, float64, float64) float64) scalarFunc {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		return f(argFloat(args, 0), argFloat(args, 1), argFloat(args, 2), argFloat(args, 3)), nil
	}
}

func wrapFormatTime(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	v, err := sparqlfn.FormatTime(normalizeArg(args, 0))
	if err != nil {
		return nil, FunctionError("format_time", err)
	}
	return v, nil
}

func wrapTimestamp(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	v, err := sparqlfn.Timestamp(normalizeArg(args, 0))
	if err != nil {
		return nil, FunctionError("timestamp", err)
	}
	return v, nil
}

func wrapTimeSort(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	v, err := sparqlfn.TimeSort(normalizeArg(args, 0))
	if err != nil {
		return nil, FunctionError("time_sort", err)
	}
	return v, nil
}

func wrapTimezoneDuration(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	v, err := sparqlfn.TimezoneDuration(normalizeArg(args, 0))
	if err != nil {
		return nil, FunctionError("timezone_duration", err)
	}
	return v, nil
}

func wrapTimezoneString(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	v, err := sparqlfn.TimezoneString(normalizeArg(args, 0))
	if err != nil {
		return nil, FunctionError("timezone_string", err)
	}
	return v, nil
}

func wrapTimezone(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	v, err := sparqlfn.Timezone(normalizeArg(args, 0))
	if err != nil {
		return nil, FunctionError("timezone", err)
	}
	return v, nil
}

func normalizeArg(args []driver.Value, i int) any {
	if i >= len(args) {
		return nil
	}
	return args[i]
}

func wrapUriIsParent(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	parent, _ := argString(args, 0)
	uri, _ := argString(args, 1)
	return sparqlfn.UriIsParent(parent, uri), nil
}

func wrapUriIsDescendant(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) < 1 {
		return false, FunctionError("uri_is_descendant", fmt.Errorf("requires at least one argument"))
	}
	uri, _ := argString(args, len(args)-1)
	parents := make([]string, 0, len(args)-1)
	for i := 0; i < len(args)-1; i++ {
		p, _ := argString(args, i)
		parents = append(parents, p)
	}
	return sparqlfn.UriIsDescendant(uri, parents...), nil
}

func wrapRegex(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	text, _ := argString(args, 0)
	pattern, _ := argString(args, 1)
	flags := ""
	if len(args) > 2 {
		flags, _ = argString(args, 2)
	}
	m, err := sparqlfn.Regex(text, pattern, flags)
	if err != nil {
		return nil, FunctionError("regex", err)
	}
	return m, nil
}

func wrapReplace(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	text, _ := argString(args, 0)
	pattern, _ := argString(args, 1)
	replacement, _ := argString(args, 2)
	flags := ""
	if len(args) > 3 {
		flags, _ = argString(args, 3)
	}
	out, err := sparqlfn.Replace(text, pattern, replacement, flags)
	if err != nil {
		return nil, FunctionError("replace", err)
	}
	return out, nil
}

func wrapNormalize(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	s, _ := argString(args, 0)
	form, _ := argString(args, 1)
	out, err := sparqlfn.Normalize(s, form)
	if err != nil {
		return nil, FunctionError("normalize", err)
	}
	return out, nil
}

func wrapChecksum(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	s, _ := argString(args, 0)
	algo, _ := argString(args, 1)
	out, err := sparqlfn.Checksum(s, algo)
	if err != nil {
		return nil, FunctionError("checksum", err)
	}
	return out, nil
}

func wrapLangmatches(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	var v any
	if len(args) > 0 {
		v = args[0]
	}
	tag, _ := argString(args, 1)
	ok, err := sparqlfn.Langmatches(v, tag)
	if err != nil {
		return nil, FunctionError("langmatches", err)
	}
	return ok, nil
}

func wrapStrlang(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	s, _ := argString(args, 0)
	tag, _ := argString(args, 1)
	return sparqlfn.Strlang(s, tag), nil
}

func wrapPrintIri(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	iface := activeResolver.Load()
	if iface == nil {
		return nil, FunctionError("print_iri", fmt.Errorf("no active interface registered"))
	}
	out, err := sparqlfn.PrintIri(normalizeArg(args, 0), iface)
	if err != nil {
		return nil, FunctionError("print_iri", err)
	}
	return out, nil
}

func wrapDataType(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	code, _ := argInt(args, 0)
	out, err := sparqlfn.DataType(code)
	if err != nil {
		return nil, FunctionError("data_type", err)
	}
	return out, nil
}

func argInt(args []driver.Value, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func wrapRand(_ *sqlite.FunctionContext, _ []driver.Value) (driver.Value, error) {
	return sparqlfn.Rand(), nil
}

func wrapUuid(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	iface := activeResolver.Load()
	if iface == nil {
		return nil, FunctionError("uuid", fmt.Errorf("no active interface registered"))
	}
	prefix, _ := argString(args, 0)
	out, err := sparqlfn.Uuid(prefix, iface)
	if err != nil {
		return nil, FunctionError("uuid", err)
	}
	return out, nil
}

func wrapBnode(_ *sqlite.FunctionContext, _ []driver.Value) (driver.Value, error) {
	iface := activeResolver.Load()
	if iface == nil {
		return nil, FunctionError("bnode", fmt.Errorf("no active interface registered"))
	}
	out, err := sparqlfn.Bnode(iface)
	if err != nil {
		return nil, FunctionError("bnode", err)
	}
	return out, nil
}
