package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dorozco/marketpulse-backend/api/responses"
	"github.com/dorozco/marketpulse-backend/internal/liveops"
	pkgerrors "github.com/dorozco/marketpulse-backend/pkg/errors"
	"github.com/dorozco/marketpulse-backend/pkg/db/models"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
	"github.com/dorozco/marketpulse-backend/pkg/metrics"
)

const defaultStreamBuffer = 16

type streamEvent struct {
	name    string
	payload any
}

// StreamDeps bundles what the dashboard stream endpoint needs.
type StreamDeps struct {
	Scheduler *liveops.Scheduler
	Bus       *liveops.Bus
	Metrics   *metrics.LiveOpsMetrics
	Logger    *logger.Logger
	Buffer    int
}

// StreamEvents serves the dashboard over Server-Sent Events. Connecting
// attaches to the scheduler (starting its ticker if this is the first
// watcher), sends one immediate snapshot, then relays every bus publish as
// its own frame. Disconnecting detaches and unsubscribes exactly once.
func StreamEvents(deps StreamDeps) http.HandlerFunc {
	buffer := deps.Buffer
	if buffer <= 0 {
		buffer = defaultStreamBuffer
	}

	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), deps.Logger, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ctx := deps.Logger.WithComponent(r.Context(), "liveops-stream")

		// slow consumers drop events instead of blocking bus delivery
		events := make(chan streamEvent, buffer)
		enqueue := func(event streamEvent) {
			select {
			case events <- event:
			default:
			}
		}

		unsubSnapshots := deps.Bus.SubscribeSnapshots(func(snapshot liveops.MetricSnapshot) {
			enqueue(streamEvent{name: "snapshot", payload: snapshot})
		})
		defer unsubSnapshots()

		unsubNotifications := deps.Bus.SubscribeNotifications(func(notification models.Notification) {
			enqueue(streamEvent{name: "notification", payload: notification})
		})
		defer unsubNotifications()

		deps.Scheduler.Attach()
		defer deps.Scheduler.Detach()

		deps.Metrics.StreamOpened()
		defer deps.Metrics.StreamClosed()

		// initial snapshot so the client never waits for the first tick; a
		// failure here degrades the stream, it does not close it
		if snapshot, err := deps.Scheduler.Snapshot(ctx); err != nil {
			deps.Logger.Error(ctx, "initial snapshot failed", err)
		} else {
			writeSSE(w, flusher, streamEvent{name: "snapshot", payload: snapshot})
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case event := <-events:
				writeSSE(w, flusher, event)
			}
		}
	}
}

// writeSSE frames one event as a self-contained SSE message.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, event streamEvent) {
	data, err := json.Marshal(event.payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.name, data)
	flusher.Flush()
}

// Snapshot returns one current metrics snapshot without opening a stream.
// It runs the same computation as a tick but is not gated by subscribers.
func Snapshot(scheduler *liveops.Scheduler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := scheduler.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot failed"))
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}
