package realtime

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_server/core/domain"
)

func TestStreamFrames(t *testing.T) {
	events := make(chan domain.SyncEvent, 3)
	events <- domain.SyncEvent{Seq: 1, Type: domain.SyncEventStatus, Message: "Listing inbox messages…"}
	events <- domain.SyncEvent{Seq: 2, Type: domain.SyncEventResult, Result: &domain.SyncResult{Connected: true, Suggestions: []*domain.Suggestion{}}}
	close(events)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, Stream(w, events, time.Hour))

	out := buf.String()
	assert.Contains(t, out, "id: 1\nevent: status\ndata: {\"message\":\"Listing inbox messages…\"}\n\n")
	assert.Contains(t, out, "id: 2\nevent: result\ndata: {\"connected\":true,\"suggestions\":[]}\n\n")
	assert.Less(t, strings.Index(out, "event: status"), strings.Index(out, "event: result"))
}

func TestErrorFrame(t *testing.T) {
	data, err := SerializeEvent(domain.SyncEvent{Type: domain.SyncEventError, Error: "mailbox sync failed"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"mailbox sync failed","message":"Gmail sync failed","connected":false}`, string(data))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStreamStopsOnWriteFailure(t *testing.T) {
	events := make(chan domain.SyncEvent, 1)
	events <- domain.SyncEvent{Seq: 1, Type: domain.SyncEventStatus, Message: "x"}

	err := Stream(bufio.NewWriter(brokenWriter{}), events, time.Hour)
	assert.Error(t, err)
}
