package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNoticesExpireAfterTTL(t *testing.T) {
	now := time.Now()
	n := NewNotifier()
	n.now = func() time.Time { return now }

	n.Push("error", "could not save")
	require.Len(t, n.Active(), 1)

	now = now.Add(NoticeTTL + time.Millisecond)
	require.Empty(t, n.Active())
}

func TestNoticesKeepOrder(t *testing.T) {
	n := NewNotifier()
	n.Push("error", "first")
	n.Push("success", "second")

	active := n.Active()
	require.Len(t, active, 2)
	require.Equal(t, "first", active[0].Message)
	require.Equal(t, "second", active[1].Message)
}
