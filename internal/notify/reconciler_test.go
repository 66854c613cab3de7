package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationUnmarshalJSON(t *testing.T) {
	var n Notification
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"n1","message":"outbid","read":true}`), &n))

	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, "outbid", n.Message)
	assert.True(t, n.Read)
}

func TestReconciler_SharedIdentityKeepsFetchedReadFlag(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconciler(zerolog.Nop())

	// The same identity arrives from both sources; only the fetched copy's
	// read flag is trustworthy.
	r.AddPushed(Notification{ID: "n1", Message: "you were outbid", Read: false, CreatedAt: base})
	r.SetFetched([]Notification{
		{ID: "n1", Message: "you were outbid", Read: true, CreatedAt: base},
		{ID: "n2", Message: "auction ending soon", Read: false, CreatedAt: base.Add(-time.Hour)},
	})

	merged := r.Merged()

	require.Len(t, merged, 2)
	assert.Equal(t, "n1", merged[0].ID)
	assert.True(t, merged[0].Read, "read flag must come from the fetched copy")
	assert.Equal(t, "n2", merged[1].ID)
}

func TestReconciler_PushAfterFetchIsIgnoredForKnownIdentity(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconciler(zerolog.Nop())

	r.SetFetched([]Notification{{ID: "n1", Read: true, CreatedAt: base}})
	r.AddPushed(Notification{ID: "n1", Read: false, CreatedAt: base})

	merged := r.Merged()

	require.Len(t, merged, 1)
	assert.True(t, merged[0].Read)
}

func TestReconciler_TwoDistinctPushesNewestFirst(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconciler(zerolog.Nop())

	r.AddPushed(Notification{ID: "n1", Message: "first", CreatedAt: base})
	r.AddPushed(Notification{ID: "n2", Message: "second", CreatedAt: base.Add(time.Minute)})

	merged := r.Merged()

	require.Len(t, merged, 2)
	assert.Equal(t, "n2", merged[0].ID)
	assert.Equal(t, "n1", merged[1].ID)
	assert.False(t, merged[0].Read)
	assert.False(t, merged[1].Read)
}

func TestReconciler_RefetchDoesNotAccumulateDuplicates(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconciler(zerolog.Nop())

	batch := []Notification{
		{ID: "n1", CreatedAt: base},
		{ID: "n2", CreatedAt: base.Add(time.Minute)},
	}
	r.SetFetched(batch)
	r.AddPushed(Notification{ID: "n3", CreatedAt: base.Add(2 * time.Minute)})

	// Second fetch now covers the pushed entry too.
	r.SetFetched(append(batch, Notification{ID: "n3", Read: true, CreatedAt: base.Add(2 * time.Minute)}))

	merged := r.Merged()

	require.Len(t, merged, 3)
	assert.Equal(t, "n3", merged[0].ID)
	assert.True(t, merged[0].Read, "refetched copy replaces the pushed one")
}

func TestReconciler_Unread(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconciler(zerolog.Nop())

	r.SetFetched([]Notification{
		{ID: "n1", Read: true, CreatedAt: base},
		{ID: "n2", Read: false, CreatedAt: base},
	})
	r.AddPushed(Notification{ID: "n3", CreatedAt: base})

	assert.Equal(t, 2, r.Unread())
}
