// Package document defines the structured values stored
// in table records and the codec used to persist them.
//
// Documents are encoded as protobuf Struct messages. A
// decoded document only ever contains the following value
// types: nil, bool, float64, string, []interface{} and
// Document. Integer inputs are widened to float64 on
// encode, so they come back as float64. Integers that
// float64 cannot hold exactly are rejected with
// ErrUnsupportedValue.
package document

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"
)

// ErrUnsupportedValue is returned when a document contains
// a value that has no protobuf Struct representation
var ErrUnsupportedValue = errors.New("unsupported document value")

// Document is a structured record value keyed by field name
type Document map[string]interface{}

// Merge returns a new document holding every field of
// doc overwritten by the fields present in partial. The merge
// is shallow: a nested document in partial replaces the
// existing nested document wholesale. Neither input is
// modified.
func Merge(doc Document, partial Document) Document {
	merged := make(Document, len(doc)+len(partial))

	for field, value := range doc {
		merged[field] = value
	}

	for field, value := range partial {
		merged[field] = value
	}

	return merged
}

// Marshal encodes a document
func Marshal(doc Document) ([]byte, error) {
	s, err := toStruct(doc)

	if err != nil {
		return nil, err
	}

	data, err := proto.Marshal(s)

	if err != nil {
		return nil, fmt.Errorf("could not marshal document: %w", err)
	}

	return data, nil
}

// Unmarshal decodes a document encoded with Marshal
func Unmarshal(data []byte) (Document, error) {
	var s structpb.Struct

	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not unmarshal document: %w", err)
	}

	return fromStruct(&s), nil
}

func toStruct(doc map[string]interface{}) (*structpb.Struct, error) {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(doc))}

	for field, value := range doc {
		v, err := toValue(value)

		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}

		s.Fields[field] = v
	}

	return s, nil
}

func toValue(value interface{}) (*structpb.Value, error) {
	switch v := value.(type) {
	case nil:
		return &structpb.Value{Kind: &structpb.Value_NullValue{NullValue: structpb.NullValue_NULL_VALUE}}, nil
	case bool:
		return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v}}, nil
	case string:
		return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v}}, nil
	case Document:
		return toStructValue(v)
	case map[string]interface{}:
		return toStructValue(v)
	case []interface{}:
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(v))}

		for i, elem := range v {
			ev, err := toValue(elem)

			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}

			list.Values = append(list.Values, ev)
		}

		return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: list}}, nil
	}

	if n, ok := toNumber(value); ok {
		return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}

func toStructValue(doc map[string]interface{}) (*structpb.Value, error) {
	s, err := toStruct(doc)

	if err != nil {
		return nil, err
	}

	return &structpb.Value{Kind: &structpb.Value_StructValue{StructValue: s}}, nil
}

// IsNumber returns true if value is one of Go's
// integer or floating point kinds and, for integers,
// float64 holds it exactly
func IsNumber(value interface{}) bool {
	_, ok := toNumber(value)

	return ok
}

func toNumber(value interface{}) (float64, bool) {
	if value == nil {
		return 0, false
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		f := float64(n)

		// float64(math.MaxInt64) rounds up to 2^63, which
		// must not be converted back to int64
		if f >= math.MaxInt64 || int64(f) != n {
			return 0, false
		}

		return f, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		f := float64(n)

		if f >= math.MaxUint64 || uint64(f) != n {
			return 0, false
		}

		return f, true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}

	return 0, false
}

func fromStruct(s *structpb.Struct) Document {
	doc := make(Document, len(s.GetFields()))

	for field, value := range s.GetFields() {
		doc[field] = fromValue(value)
	}

	return doc
}

func fromValue(value *structpb.Value) interface{} {
	switch v := value.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return v.BoolValue
	case *structpb.Value_NumberValue:
		return v.NumberValue
	case *structpb.Value_StringValue:
		return v.StringValue
	case *structpb.Value_StructValue:
		return fromStruct(v.StructValue)
	case *structpb.Value_ListValue:
		list := make([]interface{}, 0, len(v.ListValue.GetValues()))

		for _, elem := range v.ListValue.GetValues() {
			list = append(list, fromValue(elem))
		}

		return list
	}

	return nil
}
