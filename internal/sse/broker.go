// Package sse streams record change notifications to clients as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Record change kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// DashboardEvent is sent, throttled, after any record change.
const DashboardEvent = "dashboard.updated"

const (
	clientBuffer   = 64
	retryMillis    = 3000
	defaultPing    = 25 * time.Second
	defaultDashMin = 2 * time.Second
)

// Event is one message on the stream. Entity is empty for events every
// subscriber receives regardless of its filter.
type Event struct {
	Type   string
	Entity string
	Data   any
}

// RecordChange is the payload of a <entity>.<kind> event.
type RecordChange struct {
	Entity string `json:"entity"`
	Kind   string `json:"kind"`
	ID     int64  `json:"id"`
}

// Filter limits a subscription to some entities. An empty filter accepts all.
type Filter map[string]struct{}

// NewFilter builds a filter from entity names, ignoring blanks.
func NewFilter(entities ...string) Filter {
	f := Filter{}
	for _, e := range entities {
		if e = strings.TrimSpace(e); e != "" {
			f[e] = struct{}{}
		}
	}
	return f
}

func (f Filter) accepts(entity string) bool {
	if entity == "" || len(f) == 0 {
		return true
	}
	_, ok := f[entity]
	return ok
}

type subscription struct {
	ch     chan []byte
	filter Filter
}

// Option configures a Broker.
type Option func(*Broker)

// WithPingInterval sets how often idle streams receive a comment line.
func WithPingInterval(d time.Duration) Option {
	return func(b *Broker) {
		b.ping = d
	}
}

// Broker fans events out to subscribers. One goroutine owns the subscriber
// set, the event sequence and the dashboard throttle; public methods talk to
// it over channels.
type Broker struct {
	dashboardMin time.Duration
	ping         time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits at most one dashboard event per
// dashboardThrottle.
func NewBroker(dashboardThrottle time.Duration, opts ...Option) *Broker {
	if dashboardThrottle <= 0 {
		dashboardThrottle = defaultDashMin
	}
	b := &Broker{
		dashboardMin:  dashboardThrottle,
		ping:          defaultPing,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

// encode renders one event in text/event-stream framing.
func encode(seq uint64, ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, ev.Type, payload), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	subs := make(map[chan []byte]Filter)
	var (
		seq           uint64
		lastDashboard time.Time
	)

	deliver := func(ev Event) {
		seq++
		msg, err := encode(seq, ev)
		if err != nil {
			return
		}
		for ch, f := range subs {
			if !f.accepts(ev.Entity) {
				continue
			}
			select {
			case ch <- msg:
			default:
				// slow subscriber, drop
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range subs {
				close(ch)
			}
			return

		case s := <-b.subscribeCh:
			subs[s.ch] = s.filter

		case ch := <-b.unsubscribeCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case ev := <-b.publishCh:
			deliver(ev)
			if _, ok := ev.Data.(RecordChange); !ok {
				continue
			}
			if now := time.Now(); now.Sub(lastDashboard) >= b.dashboardMin {
				lastDashboard = now
				deliver(Event{Type: DashboardEvent, Data: struct{}{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(subs)
		}
	}
}

// Close stops the loop and closes every subscriber channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a subscriber. The returned channel is closed on
// Unsubscribe or Close.
func (b *Broker) Subscribe(filter Filter) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- subscription{ch: ch, filter: filter}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish queues ev for delivery.
func (b *Broker) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- ev:
	case <-b.stopped:
	}
}

// PublishRecordEvent announces that a record changed, e.g. "case.created".
// Unknown kinds are ignored.
func (b *Broker) PublishRecordEvent(kind, entity string, id int64) {
	switch kind {
	case KindCreated, KindUpdated, KindDeleted:
	default:
		return
	}
	b.Publish(Event{
		Type:   entity + "." + kind,
		Entity: entity,
		Data:   RecordChange{Entity: entity, Kind: kind, ID: id},
	})
}

// ServeHTTP streams events until the client disconnects. The optional
// "entity" query parameter is a comma-separated filter, e.g. ?entity=case,target.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var filter Filter
	if raw := r.URL.Query().Get("entity"); raw != "" {
		filter = NewFilter(strings.Split(raw, ",")...)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe(filter)
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.ping)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
