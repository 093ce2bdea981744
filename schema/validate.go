package schema

import (
	"fmt"

	"github.com/jrife/kaeru/storage/document"
)

// Validate checks that doc has exactly the fields of the
// table and that every value matches its field type. A
// nullable field may be nil or missing.
func (table Table) Validate(doc document.Document) error {
	if err := validateFields(table.Fields, doc, false); err != nil {
		return fmt.Errorf("table %q: %w", table.Name, err)
	}

	return nil
}

// ValidatePartial is like Validate except fields missing
// from doc are allowed. It is meant for update payloads.
func (table Table) ValidatePartial(doc document.Document) error {
	if err := validateFields(table.Fields, doc, true); err != nil {
		return fmt.Errorf("table %q: %w", table.Name, err)
	}

	return nil
}

func validateFields(fields map[string]Field, doc map[string]interface{}, partial bool) error {
	for name := range doc {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("%w: unknown field %q", ErrValidation, name)
		}
	}

	for name, field := range fields {
		value, ok := doc[name]

		if !ok && partial {
			continue
		}

		if err := validateValue(field, value); err != nil {
			return err
		}
	}

	return nil
}

func validateValue(field Field, value interface{}) error {
	if value == nil {
		if field.Nullable {
			return nil
		}

		return fmt.Errorf("%w: field %q must not be null", ErrValidation, field.Name)
	}

	ok := false

	switch field.Type {
	case TypeString, TypeForeignKey:
		_, ok = value.(string)
	case TypeNumber:
		ok = document.IsNumber(value)
	case TypeBoolean:
		_, ok = value.(bool)
	case TypeObject:
		var nested map[string]interface{}

		switch v := value.(type) {
		case document.Document:
			nested = v
		case map[string]interface{}:
			nested = v
		}

		if nested == nil {
			break
		}

		if err := validateFields(field.Fields, nested, false); err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}

		ok = true
	}

	if !ok {
		return fmt.Errorf("%w: field %q must be %s, got %T", ErrValidation, field.Name, field.Type, value)
	}

	return nil
}
