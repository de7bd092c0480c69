// Package realtime writes sync progress as Server-Sent Events.
package realtime

import (
	"bufio"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"jobtracker_server/core/domain"
)

// DefaultHeartbeat keeps idle proxies from closing the stream while the model stages run.
const DefaultHeartbeat = 15 * time.Second

type statusPayload struct {
	Message string `json:"message"`
}

// errorMessage is the headline shown above the error detail.
const errorMessage = "Gmail sync failed"

type errorPayload struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Connected bool   `json:"connected"`
}

// SerializeEvent returns the data line payload of ev.
func SerializeEvent(ev domain.SyncEvent) ([]byte, error) {
	switch ev.Type {
	case domain.SyncEventResult:
		result := ev.Result
		if result == nil {
			result = &domain.SyncResult{Suggestions: []*domain.Suggestion{}}
		}
		return json.Marshal(result)
	case domain.SyncEventError:
		return json.Marshal(errorPayload{Error: ev.Error, Message: errorMessage})
	default:
		return json.Marshal(statusPayload{Message: ev.Message})
	}
}

// WriteEvent writes one frame and flushes it. A flush error means the client is gone.
func WriteEvent(w *bufio.Writer, ev domain.SyncEvent) error {
	data, err := SerializeEvent(ev)
	if err != nil {
		return err
	}

	w.WriteString("id: ")
	w.WriteString(strconv.FormatInt(ev.Seq, 10))
	w.WriteString("\nevent: ")
	w.WriteString(string(ev.Type))
	w.WriteString("\ndata: ")
	w.Write(data)
	w.WriteString("\n\n")
	return w.Flush()
}

// Stream copies events to w until the channel closes or a write fails.
func Stream(w *bufio.Writer, events <-chan domain.SyncEvent, heartbeat time.Duration) error {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := WriteEvent(w, ev); err != nil {
				return err
			}
		case <-ticker.C:
			w.WriteString(": heartbeat\n\n")
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}
