// Package schema describes the tables of a database and the
// fields of the records stored in them.
//
// A declaration lists tables by name. Each table maps field
// names either to a type descriptor string or to a nested
// set of fields. Type descriptors follow the grammar
//
//   ["nullable"] ("string" | "number" | "boolean" | "foreign_key")
//
// The schema is fixed once parsed. It documents the shape of
// records and offers Validate for callers that want to check
// values at runtime. The database layer itself never consults
// it when reading or writing.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicateTable is returned when a declaration
	// names the same table more than once
	ErrDuplicateTable = errors.New("duplicate table")
	// ErrInvalidType is returned when a type descriptor
	// does not follow the descriptor grammar
	ErrInvalidType = errors.New("invalid type descriptor")
	// ErrEmptyName is returned when a table or field has
	// an empty name
	ErrEmptyName = errors.New("name must not be empty")
	// ErrValidation is returned by Validate when a value
	// does not conform to the table schema
	ErrValidation = errors.New("value does not conform to schema")
)

// Type is the base type of a field
type Type int

const (
	// TypeString fields hold strings
	TypeString Type = iota
	// TypeNumber fields hold numbers
	TypeNumber
	// TypeBoolean fields hold booleans
	TypeBoolean
	// TypeForeignKey fields hold the key of a record,
	// usually in another table
	TypeForeignKey
	// TypeObject fields hold a nested document described
	// by Field.Fields
	TypeObject
)

var typeNames = map[string]Type{
	"string":      TypeString,
	"number":      TypeNumber,
	"boolean":     TypeBoolean,
	"foreign_key": TypeForeignKey,
}

func (t Type) String() string {
	for name, other := range typeNames {
		if other == t {
			return name
		}
	}

	if t == TypeObject {
		return "object"
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Fields declares the fields of a table or of a nested
// object. Values must be either a type descriptor string
// or another Fields.
type Fields map[string]interface{}

// TableDeclaration declares one table
type TableDeclaration struct {
	Name   string
	Fields Fields
}

// Declaration lists every table of a database
type Declaration []TableDeclaration

// Field is a parsed field declaration
type Field struct {
	Name     string
	Type     Type
	Nullable bool
	// Fields is set only for TypeObject
	Fields map[string]Field
}

// Table is a parsed table declaration
type Table struct {
	Name   string
	Fields map[string]Field
}

// Schema is a parsed declaration
type Schema struct {
	tables map[string]Table
}

// Parse checks a declaration and builds the schema it
// describes
func Parse(declaration Declaration) (*Schema, error) {
	schema := &Schema{tables: make(map[string]Table, len(declaration))}

	for _, tableDeclaration := range declaration {
		if tableDeclaration.Name == "" {
			return nil, fmt.Errorf("table: %w", ErrEmptyName)
		}

		if _, ok := schema.tables[tableDeclaration.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTable, tableDeclaration.Name)
		}

		fields, err := parseFields(tableDeclaration.Fields)

		if err != nil {
			return nil, fmt.Errorf("table %q: %w", tableDeclaration.Name, err)
		}

		schema.tables[tableDeclaration.Name] = Table{Name: tableDeclaration.Name, Fields: fields}
	}

	return schema, nil
}

// Table returns the named table
func (schema *Schema) Table(name string) (Table, bool) {
	table, ok := schema.tables[name]

	return table, ok
}

// Tables returns the names of all tables in ascending order
func (schema *Schema) Tables() []string {
	names := make([]string, 0, len(schema.tables))

	for name := range schema.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// ParseType parses a single type descriptor
func ParseType(descriptor string) (Field, error) {
	tokens := strings.Split(descriptor, " ")
	field := Field{}

	if len(tokens) == 2 && tokens[0] == "nullable" {
		field.Nullable = true
		tokens = tokens[1:]
	}

	if len(tokens) != 1 {
		return Field{}, fmt.Errorf("%w: %q", ErrInvalidType, descriptor)
	}

	t, ok := typeNames[tokens[0]]

	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrInvalidType, descriptor)
	}

	field.Type = t

	return field, nil
}

func parseFields(fields Fields) (map[string]Field, error) {
	parsed := make(map[string]Field, len(fields))

	for name, declaration := range fields {
		if name == "" {
			return nil, fmt.Errorf("field: %w", ErrEmptyName)
		}

		var field Field

		switch d := declaration.(type) {
		case string:
			f, err := ParseType(d)

			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}

			field = f
		case Fields:
			nested, err := parseFields(d)

			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}

			field = Field{Type: TypeObject, Fields: nested}
		default:
			return nil, fmt.Errorf("field %q: %w: %T", name, ErrInvalidType, declaration)
		}

		field.Name = name
		parsed[name] = field
	}

	return parsed, nil
}
