package liveops

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dorozco/marketpulse-backend/pkg/logger"
	"github.com/dorozco/marketpulse-backend/pkg/metrics"
)

const (
	defaultTickInterval = 15 * time.Second
	defaultTickTimeout  = 10 * time.Second

	tickKind     = "tick"
	snapshotKind = "snapshot"
)

// SchedulerParams configure the metrics scheduler.
type SchedulerParams struct {
	Logger       *logger.Logger
	Source       Source
	Bus          *Bus
	Metrics      *metrics.LiveOpsMetrics
	TickInterval time.Duration
	TickTimeout  time.Duration
}

// Scheduler recomputes the operational snapshot on a fixed interval and
// publishes it on the bus, but only while at least one subscriber is
// attached. The subscriber count gates an Idle/Active state machine: the
// first Attach starts the ticker, the last Detach stops it.
type Scheduler struct {
	logg     *logger.Logger
	source   Source
	bus      *Bus
	metrics  *metrics.LiveOpsMetrics
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu          sync.Mutex
	subscribers int
	stop        chan struct{}
	closed      bool
}

// NewScheduler builds an idle scheduler.
func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("source required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("bus required")
	}
	interval := params.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	timeout := params.TickTimeout
	if timeout <= 0 {
		timeout = defaultTickTimeout
	}
	return &Scheduler{
		logg:     params.Logger,
		source:   params.Source,
		bus:      params.Bus,
		metrics:  params.Metrics,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
	}, nil
}

// Attach registers one subscriber and returns the new count. The transition
// from zero starts the ticker; attaching while already active only bumps the
// count. The caller is responsible for fetching one immediate snapshot via
// Snapshot so a new subscriber never waits for the first tick.
func (s *Scheduler) Attach() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.subscribers
	}
	s.subscribers++
	if s.subscribers == 1 {
		s.stop = make(chan struct{})
		go s.run(s.stop)
	}
	return s.subscribers
}

// Detach removes one subscriber and returns the new count, floored at zero.
// Reaching zero stops the ticker.
func (s *Scheduler) Detach() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribers == 0 {
		return 0
	}
	s.subscribers--
	if s.subscribers == 0 && s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	return s.subscribers
}

// Subscribers reports the current subscriber count.
func (s *Scheduler) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribers
}

// Active reports whether the ticker is running.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Snapshot computes one current snapshot regardless of subscriber count.
func (s *Scheduler) Snapshot(ctx context.Context) (MetricSnapshot, error) {
	return s.compute(ctx, snapshotKind)
}

// Close stops any running ticker and rejects further attaches.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.subscribers = 0
}

func (s *Scheduler) run(stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick computes and publishes one snapshot. A failed computation is logged
// and skipped; the ticker keeps running.
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ctx = s.logg.WithComponent(ctx, "liveops-scheduler")

	snapshot, err := s.compute(ctx, tickKind)
	if err != nil {
		s.logg.Error(ctx, "snapshot tick failed", err)
		return
	}
	s.bus.PublishSnapshot(snapshot)
}

func (s *Scheduler) compute(ctx context.Context, kind string) (MetricSnapshot, error) {
	start := s.now()
	snapshot, err := s.source.Snapshot(ctx, s.now())
	s.metrics.ObserveTick(kind, s.now().Sub(start))
	if err != nil {
		s.metrics.IncTickFailure(kind)
		return MetricSnapshot{}, err
	}
	s.metrics.IncTickSuccess(kind)
	return snapshot, nil
}
