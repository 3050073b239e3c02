package backend

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so errors line up with the wire format.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("json")
		if i := strings.Index(name, ","); i >= 0 {
			name = name[:i]
		}
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// fieldChecker lets an input add rules the struct tags cannot express.
type fieldChecker interface {
	checkFields() map[string]string
}

// validateInput runs the struct tags and any extra checks of in.
func (c *Client) validateInput(op string, in any) error {
	fields := map[string]string{}

	if err := c.validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return &ValidationError{Op: op, Fields: map[string]string{"_": err.Error()}}
		}
		for _, fe := range ve {
			fields[fieldPath(fe)] = messageForTag(fe.Tag(), fe.Param())
		}
	}

	if fc, ok := in.(fieldChecker); ok {
		for k, msg := range fc.checkFields() {
			if _, exists := fields[k]; !exists {
				fields[k] = msg
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Op: op, Fields: fields}
	}
	return nil
}

// validateResponse applies the schema tags of a decoded response body.
func (c *Client) validateResponse(resource string, v any) error {
	if err := c.validate.Struct(v); err != nil {
		return &SchemaError{Resource: resource, Err: err}
	}
	return nil
}

// fieldPath drops the top-level struct name from the namespace:
// "CreateOrderInput.items[0].quantity" becomes "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be at least " + param
	case "min":
		return "must have at least " + param + " entries"
	case "max":
		return "must have at most " + param + " entries"
	case "oneof":
		return "must be one of " + param
	default:
		return "is invalid"
	}
}

func positiveID(op string, id int64) error {
	if id <= 0 {
		return &ValidationError{Op: op, Fields: map[string]string{"id": "must be a positive integer, got " + strconv.FormatInt(id, 10)}}
	}
	return nil
}

func nonEmptyKey(op, field, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Op: op, Fields: map[string]string{field: "is required"}}
	}
	return nil
}
