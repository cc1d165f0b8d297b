package forms

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field path to a human-readable message. Validation errors are
// field-scoped and recoverable by editing; they never surface as global
// notifications.
type Errors map[string]string

// ExistsFunc asks the persistence collaborator whether an identifier is
// already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// UniqueRule defers an identifier-uniqueness check to the collaborator.
// A failed lookup blocks submission the same way a true duplicate does
// (fail-closed), but with a distinct message so the user can tell the causes
// apart.
type UniqueRule[T any] struct {
	Field  string
	Value  func(T) string
	Exists ExistsFunc
	// Skip suppresses the check, e.g. when editing an existing record whose
	// identifier cannot change.
	Skip func(T) bool
}

// Ruleset validates candidate entity records. Synchronous constraints come
// from `validate` struct tags; uniqueness rules run against the collaborator.
type Ruleset[T any] struct {
	validate *validator.Validate
	unique   []UniqueRule[T]
}

// NewRuleset builds a Ruleset reporting fields by their json tag names.
func NewRuleset[T any](unique ...UniqueRule[T]) *Ruleset[T] {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Ruleset[T]{validate: v, unique: unique}
}

// CheckField validates a single field, the blur-time path. Unknown field
// names report no error.
func (r *Ruleset[T]) CheckField(record T, field string) Errors {
	all := r.checkSync(record)
	errs := Errors{}
	if msg, ok := all[field]; ok {
		errs[field] = msg
	}
	return errs
}

// Check re-runs the full ruleset, including uniqueness lookups. An empty
// result means the record may be submitted.
func (r *Ruleset[T]) Check(ctx context.Context, record T) Errors {
	errs := r.checkSync(record)
	for _, rule := range r.unique {
		if _, taken := errs[rule.Field]; taken {
			continue
		}
		if rule.Skip != nil && rule.Skip(record) {
			continue
		}
		value := rule.Value(record)
		if value == "" {
			continue
		}
		exists, err := rule.Exists(ctx, value)
		if err != nil {
			errs[rule.Field] = fmt.Sprintf("could not verify %s is unique", rule.Field)
			continue
		}
		if exists {
			errs[rule.Field] = fmt.Sprintf("%s already exists", rule.Field)
		}
	}
	return errs
}

func (r *Ruleset[T]) checkSync(record T) Errors {
	errs := Errors{}
	err := r.validate.Struct(record)
	if err == nil {
		return errs
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["general"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		errs[fe.Field()] = fieldMessage(fe)
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
