package langfields

import (
	"reflect"
	"strings"

	"gorm.io/gorm/schema"
)

// TagName is the struct tag that marks a field as language-variant.
//
//	Name string `gorm:"-" lang:"weight:A"`
//	Body string `gorm:"-" lang:"weight:B;type:varchar(4000)"`
//	Note string `gorm:"-" lang:""`
const TagName = "lang"

// Weight is a PostgreSQL text search weight label.
type Weight string

const (
	WeightNone Weight = ""
	WeightA    Weight = "A"
	WeightB    Weight = "B"
	WeightC    Weight = "C"
	WeightD    Weight = "D"
)

func parseWeight(s string) (Weight, bool) {
	switch w := Weight(strings.ToUpper(strings.TrimSpace(s))); w {
	case WeightNone, WeightA, WeightB, WeightC, WeightD:
		return w, true
	default:
		return "", false
	}
}

// Field is one language-variant field declaration.
type Field struct {
	Name   string // Go struct field name
	Column string // column in the translations table
	Type   string // SQL column type
	Weight Weight

	index []int
}

// Weighted reports whether the field contributes to the search vector.
func (f Field) Weighted() bool { return f.Weight != WeightNone }

// valueOf reads the field from a struct value. Nil pointers read as nil.
func (f Field) valueOf(rv reflect.Value) any {
	fv := rv.FieldByIndex(f.index)
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		return fv.Elem().Interface()
	}
	return fv.Interface()
}

// isZero reports whether the struct field holds its zero value.
func (f Field) isZero(rv reflect.Value) bool {
	return rv.FieldByIndex(f.index).IsZero()
}

// setOn writes v into the struct field, converting where possible.
// A nil v resets the field to its zero value.
func (f Field) setOn(rv reflect.Value, v any) {
	fv := rv.FieldByIndex(f.index)
	if v == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return
	}
	target := fv.Type()
	if target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	val := reflect.ValueOf(v)
	if target.Kind() == reflect.String && val.Kind() != reflect.String {
		val = reflect.ValueOf(textOf(v))
	}
	if !val.Type().ConvertibleTo(target) {
		return
	}
	val = val.Convert(target)
	if fv.Kind() == reflect.Pointer {
		ptr := reflect.New(target)
		ptr.Elem().Set(val)
		fv.Set(ptr)
		return
	}
	fv.Set(val)
}

// ignoredByGorm reports whether a gorm tag keeps the field out of both
// reads and writes. "-:migration" only skips migration and does not count.
func ignoredByGorm(tag string) bool {
	first, _, _ := strings.Cut(tag, ";")
	switch strings.ToLower(strings.TrimSpace(first)) {
	case "-", "-:all":
		return true
	default:
		return false
	}
}

// sqlType maps a Go type onto a PostgreSQL column type.
func sqlType(t reflect.Type) (string, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "text", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "bigint", true
	case reflect.Float32, reflect.Float64:
		return "double precision", true
	case reflect.Bool:
		return "boolean", true
	default:
		return "", false
	}
}

// scanFields collects the lang-tagged fields of modelType, descending into
// anonymous embedded structs the way gorm does.
func scanFields(model string, modelType reflect.Type, namer schema.Namer, index []int) ([]Field, error) {
	var out []Field
	for i := 0; i < modelType.NumField(); i++ {
		sf := modelType.Field(i)
		if !sf.IsExported() {
			continue
		}
		idx := append(append([]int(nil), index...), i)

		tag, ok := sf.Tag.Lookup(TagName)
		if !ok {
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Type != translatableType {
				nested, err := scanFields(model, sf.Type, namer, idx)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
			}
			continue
		}

		if !ignoredByGorm(sf.Tag.Get("gorm")) {
			return nil, &SchemaError{Model: model, Field: sf.Name, Msg: `language field must be tagged gorm:"-"`}
		}

		settings := schema.ParseTagSetting(tag, ";")
		f := Field{Name: sf.Name, index: idx}

		w, ok := parseWeight(settings["WEIGHT"])
		if !ok {
			return nil, &SchemaError{Model: model, Field: sf.Name, Msg: "unknown weight " + settings["WEIGHT"]}
		}
		f.Weight = w

		f.Column = settings["COLUMN"]
		if f.Column == "" {
			f.Column = namer.ColumnName("", sf.Name)
		}

		f.Type = settings["TYPE"]
		if f.Type == "" {
			t, ok := sqlType(sf.Type)
			if !ok {
				return nil, &SchemaError{Model: model, Field: sf.Name, Msg: "unsupported type " + sf.Type.String()}
			}
			f.Type = t
		}
		out = append(out, f)
	}
	return out, nil
}
