package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testSupplier struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestCheckReportsInvalidEmailOnce(t *testing.T) {
	rules := NewRuleset[testSupplier]()

	errs := rules.Check(context.Background(), testSupplier{
		ID:    "S-1",
		Name:  "Acme",
		Email: "not-an-email",
	})

	require.Len(t, errs, 1)
	require.Contains(t, errs, "email")
}

func TestCheckFieldOnBlur(t *testing.T) {
	rules := NewRuleset[testSupplier]()

	errs := rules.CheckField(testSupplier{Email: "not-an-email"}, "email")
	require.Contains(t, errs, "email")

	// Other failing fields stay out of a single-field check.
	require.NotContains(t, errs, "name")
}

func TestUniqueRuleDuplicate(t *testing.T) {
	rules := NewRuleset(UniqueRule[testSupplier]{
		Field: "id",
		Value: func(s testSupplier) string { return s.ID },
		Exists: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	})

	errs := rules.Check(context.Background(), testSupplier{ID: "S-1", Name: "Acme", Email: "a@b.co"})
	require.Contains(t, errs, "id")
	require.Equal(t, "id already exists", errs["id"])
}

func TestUniqueRuleFailsClosedOnLookupError(t *testing.T) {
	rules := NewRuleset(UniqueRule[testSupplier]{
		Field: "id",
		Value: func(s testSupplier) string { return s.ID },
		Exists: func(ctx context.Context, id string) (bool, error) {
			return false, errors.New("backend unreachable")
		},
	})

	errs := rules.Check(context.Background(), testSupplier{ID: "S-1", Name: "Acme", Email: "a@b.co"})
	require.Contains(t, errs, "id")
	require.Equal(t, "could not verify id is unique", errs["id"])
}

func TestUniqueRuleSkippedWhileEditing(t *testing.T) {
	called := false
	rules := NewRuleset(UniqueRule[testSupplier]{
		Field: "id",
		Value: func(s testSupplier) string { return s.ID },
		Skip:  func(s testSupplier) bool { return true },
		Exists: func(ctx context.Context, id string) (bool, error) {
			called = true
			return true, nil
		},
	})

	errs := rules.Check(context.Background(), testSupplier{ID: "S-1", Name: "Acme", Email: "a@b.co"})
	require.Empty(t, errs)
	require.False(t, called)
}
