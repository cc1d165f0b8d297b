package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testDraft struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type flakyCollaborator struct {
	failures int
	records  []testDraft
}

func (c *flakyCollaborator) submit(ctx context.Context, record testDraft) error {
	if c.failures > 0 {
		c.failures--
		return errors.New("backend: 502")
	}
	c.records = append(c.records, record)
	return nil
}

func TestSubmitHappyPath(t *testing.T) {
	collab := &flakyCollaborator{}
	form := New(Config[testDraft]{
		Draft:  testDraft{ID: "I-1", Name: "first"},
		Rules:  NewRuleset[testDraft](),
		Submit: collab.submit,
	})

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, StateSuccess, form.State())
	require.Len(t, collab.records, 1)

	// Draft is cleared after success.
	require.Equal(t, testDraft{}, form.Draft())
}

func TestSubmitBlockedByFieldErrors(t *testing.T) {
	collab := &flakyCollaborator{}
	form := New(Config[testDraft]{
		Draft:  testDraft{ID: "I-1"},
		Rules:  NewRuleset[testDraft](),
		Submit: collab.submit,
	})

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Contains(t, errs, "name")
	require.Equal(t, StateEditing, form.State())
	require.Empty(t, collab.records)
}

func TestFailedSubmitPreservesDraftAndRetrySucceeds(t *testing.T) {
	collab := &flakyCollaborator{failures: 1}
	form := New(Config[testDraft]{
		Draft:  testDraft{ID: "I-1", Name: "first"},
		Rules:  NewRuleset[testDraft](),
		Submit: collab.submit,
	})

	_, err := form.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, StateEditing, form.State())
	require.Equal(t, testDraft{ID: "I-1", Name: "first"}, form.Draft())

	notices := form.Notices()
	require.Len(t, notices, 1)
	require.Equal(t, "error", notices[0].Kind)

	require.NoError(t, form.Apply(func(d *testDraft) { d.Name = "corrected" }))

	errs, err := form.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, StateSuccess, form.State())
	require.Equal(t, "corrected", collab.records[0].Name)
}

func TestDeriveRunsOnEveryEdit(t *testing.T) {
	derived := 0
	form := New(Config[testDraft]{
		Draft:  testDraft{ID: "I-1", Name: "x"},
		Rules:  NewRuleset[testDraft](),
		Derive: func(d *testDraft) { derived++ },
		Submit: func(ctx context.Context, record testDraft) error { return nil },
	})

	require.Equal(t, 1, derived)
	require.NoError(t, form.Apply(func(d *testDraft) { d.Name = "y" }))
	require.Equal(t, 2, derived)
}

func TestCancelRequiresConfirmation(t *testing.T) {
	form := New(Config[testDraft]{
		Draft:  testDraft{ID: "I-1", Name: "first"},
		Rules:  NewRuleset[testDraft](),
		Submit: func(ctx context.Context, record testDraft) error { return nil },
	})

	require.ErrorIs(t, form.Cancel(false), ErrConfirmRequired)
	require.Equal(t, StateEditing, form.State())
	require.Equal(t, "first", form.Draft().Name)

	require.NoError(t, form.Cancel(true))
	require.True(t, form.Closed())
}

func TestDismissDiscardsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	applied := false

	form := New(Config[testDraft]{
		Draft: testDraft{ID: "I-1", Name: "first"},
		Rules: NewRuleset[testDraft](),
		Submit: func(ctx context.Context, record testDraft) error {
			close(entered)
			<-release
			return nil
		},
		OnSuccess: func(record testDraft) { applied = true },
	})

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	<-entered
	form.Dismiss()
	close(release)

	require.ErrorIs(t, <-done, ErrStaleGeneration)
	require.False(t, applied)
	require.NotEqual(t, StateSuccess, form.State())
}

func TestOnlyOneSubmissionInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	form := New(Config[testDraft]{
		Draft: testDraft{ID: "I-1", Name: "first"},
		Rules: NewRuleset[testDraft](),
		Submit: func(ctx context.Context, record testDraft) error {
			close(entered)
			<-release
			return nil
		},
	})

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()

	<-entered
	_, err := form.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestNestedCreateFlowHandsEntityToParent(t *testing.T) {
	type parentDraft struct {
		SupplierID string `json:"supplier_id" validate:"required"`
	}

	cache := NewRefCache(supplierKey, []refSupplier{{ID: "S-1", Name: "Acme"}})

	parent := New(Config[parentDraft]{
		Draft:  parentDraft{},
		Rules:  NewRuleset[parentDraft](),
		Submit: func(ctx context.Context, record parentDraft) error { return nil },
	})

	child := New(Config[testDraft]{
		Draft:  testDraft{ID: "S-2", Name: "Globex"},
		Rules:  NewRuleset[testDraft](),
		Submit: func(ctx context.Context, record testDraft) error { return nil },
		OnSuccess: func(record testDraft) {
			cache.Append(refSupplier{ID: record.ID, Name: record.Name})
			_ = parent.Apply(func(d *parentDraft) { d.SupplierID = record.ID })
		},
	})

	errs, err := child.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)

	require.Equal(t, 2, cache.Len())
	require.Equal(t, "S-2", parent.Draft().SupplierID)
}

func TestNestedCreateFailureLeavesParentUntouched(t *testing.T) {
	type parentDraft struct {
		SupplierID string `json:"supplier_id"`
	}

	cache := NewRefCache(supplierKey, []refSupplier{{ID: "S-1", Name: "Acme"}})

	parent := New(Config[parentDraft]{
		Draft:  parentDraft{SupplierID: "S-1"},
		Rules:  NewRuleset[parentDraft](),
		Submit: func(ctx context.Context, record parentDraft) error { return nil },
	})

	child := New(Config[testDraft]{
		Draft:  testDraft{ID: "S-2", Name: "Globex"},
		Rules:  NewRuleset[testDraft](),
		Submit: func(ctx context.Context, record testDraft) error { return errors.New("backend: 500") },
		OnSuccess: func(record testDraft) {
			cache.Append(refSupplier{ID: record.ID, Name: record.Name})
		},
	})

	_, err := child.Submit(context.Background())
	require.Error(t, err)

	require.Equal(t, 1, cache.Len())
	require.Equal(t, "S-1", parent.Draft().SupplierID)
}
