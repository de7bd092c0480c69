package mongodb

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_server/core/domain"
)

func TestDebugCompression(t *testing.T) {
	started := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	small := &domain.SyncReport{ID: "r1", StartedAt: started, FinishedAt: started.Add(2 * time.Second), Duration: 2 * time.Second,
		Debug: &domain.SyncDebug{ListedCount: 3}}
	doc, err := toDocument(small)
	require.NoError(t, err)
	assert.False(t, doc.IsCompressed)
	assert.Equal(t, started.Add(2*time.Second+reportRetention), doc.ExpiresAt)

	big := &domain.SyncReport{ID: "r2", StartedAt: started, FinishedAt: started, Debug: &domain.SyncDebug{}}
	for i := 0; i < 40; i++ {
		big.Debug.AddError("fetch", "MESSAGE_FETCH_FAILED", fmt.Sprintf("msg-%d", i), "failed to fetch message: server error")
	}
	doc, err = toDocument(big)
	require.NoError(t, err)
	assert.True(t, doc.IsCompressed)

	back, err := toReport(doc)
	require.NoError(t, err)
	require.NotNil(t, back.Debug)
	assert.Len(t, back.Debug.Errors, 40)
	assert.Equal(t, "msg-39", back.Debug.Errors[39].MessageID)
}

func TestDurationIsMilliseconds(t *testing.T) {
	doc, err := toDocument(&domain.SyncReport{ID: "r", Duration: 1500 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), doc.DurationMS)

	back, err := toReport(doc)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, back.Duration)
	assert.Nil(t, back.Debug)
}
