package forms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestForm() *Form[testDraft] {
	return New(Config[testDraft]{
		Draft:  testDraft{ID: "I-1", Name: "first"},
		Rules:  NewRuleset[testDraft](),
		Submit: func(ctx context.Context, record testDraft) error { return nil },
	})
}

func TestRegistryAddGet(t *testing.T) {
	reg := NewRegistry()
	form := newTestForm()
	reg.Add(form)

	got := reg.Get(form.ID())
	require.NotNil(t, got)
	require.Equal(t, form.ID(), got.ID())
}

func TestRegistryDropDismisses(t *testing.T) {
	reg := NewRegistry()
	form := newTestForm()
	reg.Add(form)

	reg.Drop(form.ID())
	require.True(t, form.Closed())
	require.Nil(t, reg.Get(form.ID()))
	require.Zero(t, reg.Len())
}

func TestRegistryPrunesClosedForms(t *testing.T) {
	reg := NewRegistry()
	form := newTestForm()
	reg.Add(form)

	_, err := form.Submit(context.Background())
	require.NoError(t, err)

	require.Nil(t, reg.Get(form.ID()))
	require.Zero(t, reg.Len())
}
