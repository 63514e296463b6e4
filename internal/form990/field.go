package form990

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/form990-cli/internal/schedule"
)

// TargetType is the type a raw source value is cast to.
type TargetType int

const (
	TypeString TargetType = iota + 1
	TypeInt
	TypeYear // YYYY-MM-DD date reduced to its calendar year
)

// String returns the type name.
func (t TargetType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeYear:
		return "year"
	default:
		return "unknown"
	}
}

// Cleanup is a string normalisation applied after casting.
type Cleanup func(string) string

// Upper uppercases s.
func Upper(s string) string { return strings.ToUpper(s) }

// Title title-cases s ("NEW YORK" and "new york" both become "New York").
// Letters after an apostrophe are lowered, so "O'BRIEN" becomes "O'brien";
// Python's str.title would give "O'Brien".
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// FieldSpec maps one source variable to one output field.
type FieldSpec struct {
	Output string     `validate:"required"`
	Source string     `validate:"required"`
	Type   TargetType `validate:"min=1,max=3"`
	// Alternate is consulted only when Source is missing or blank.
	Alternate string
	Cleanup   Cleanup
}

// resolve looks up, casts and cleans the field's value from part.
// The result is nil when the value cannot be resolved.
func (f FieldSpec) resolve(part schedule.Part, log *zap.Logger) any {
	raw, ok := lookup(part, f.Source)
	if !ok && f.Alternate != "" {
		raw, ok = lookup(part, f.Alternate)
	}
	if !ok {
		return nil
	}

	v, ok := coerce(raw, f.Type)
	if !ok {
		log.Debug("coercion failed",
			zap.String("field", f.Output),
			zap.String("source", f.Source),
			zap.Stringer("type", f.Type),
			zap.String("raw", raw),
		)
		return nil
	}

	if s, isStr := v.(string); isStr && f.Cleanup != nil {
		v = f.Cleanup(s)
	}
	return v
}

// extract builds a record holding every listed field, absent ones as nil.
func extract(part schedule.Part, fields []FieldSpec, log *zap.Logger) *Record {
	rec := NewRecord()
	for _, f := range fields {
		rec.Set(f.Output, f.resolve(part, log))
	}
	return rec
}

// lookup returns the trimmed value for key, treating blank values as missing.
func lookup(part schedule.Part, key string) (string, bool) {
	v, ok := part[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// coerce casts raw to t. The bool is false when the value is not convertible.
func coerce(raw string, t TargetType) (any, bool) {
	switch t {
	case TypeString:
		return raw, true
	case TypeInt:
		return parseAmount(raw)
	case TypeYear:
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, false
		}
		return int64(d.Year()), true
	default:
		return nil, false
	}
}

// amountRe matches plain decimal integers, optionally with an all-zero
// fraction. Exponents, hex floats and signs other than "-" are rejected.
var amountRe = regexp.MustCompile(`^-?\d+(\.0+)?$`)

// parseAmount parses whole-dollar amounts. Decimal strings are accepted only
// when they carry no fractional part ("1200.00").
func parseAmount(s string) (any, bool) {
	if !amountRe.MatchString(s) {
		return nil, false
	}
	whole, _, _ := strings.Cut(s, ".")
	v, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return nil, false
	}
	return v, true
}

// intValue returns the record's int64 field as a pointer, nil if absent.
func intValue(rec *Record, k string) *int64 {
	v, _ := rec.Get(k)
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	return &n
}
