package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// drain collects whatever is buffered on ch after a short settle delay.
func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe(nil)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestRecordEventFraming(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe(nil)
	defer b.Unsubscribe(ch)

	b.PublishRecordEvent(KindCreated, "case", 3)

	msgs := drain(ch)
	if len(msgs) != 2 {
		t.Fatalf("messages = %q, want record + dashboard", msgs)
	}
	want := "id: 1\nevent: case.created\ndata: {\"entity\":\"case\",\"kind\":\"created\",\"id\":3}\n\n"
	if msgs[0] != want {
		t.Errorf("record event = %q, want %q", msgs[0], want)
	}
	if !strings.HasPrefix(msgs[1], "id: 2\nevent: dashboard.updated\n") {
		t.Errorf("dashboard event = %q", msgs[1])
	}
}

func TestDashboardThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe(nil)
	defer b.Unsubscribe(ch)

	b.PublishRecordEvent(KindCreated, "case", 1)
	b.PublishRecordEvent(KindUpdated, "target", 2)

	dashboards := 0
	var records []string
	for _, m := range drain(ch) {
		if strings.Contains(m, DashboardEvent) {
			dashboards++
		} else {
			records = append(records, m)
		}
	}
	if len(records) != 2 {
		t.Fatalf("record events = %d, want 2", len(records))
	}
	if !strings.Contains(records[1], "event: target.updated") || !strings.Contains(records[1], `"id":2`) {
		t.Errorf("second event = %q", records[1])
	}
	if dashboards != 1 {
		t.Errorf("dashboard events = %d, want 1", dashboards)
	}
}

func TestPlainEventsSkipDashboard(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe(nil)
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "maintenance", Data: map[string]string{"msg": "restart"}})
	msgs := drain(ch)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "event: maintenance") {
		t.Errorf("messages = %q", msgs)
	}
}

func TestUnknownKindIgnored(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe(nil)
	defer b.Unsubscribe(ch)

	b.PublishRecordEvent("renamed", "case", 1)
	if msgs := drain(ch); len(msgs) != 0 {
		t.Errorf("unexpected messages %q", msgs)
	}
}

func TestEntityFilter(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	targetsOnly := b.Subscribe(NewFilter("target", " "))
	defer b.Unsubscribe(targetsOnly)
	everything := b.Subscribe(nil)
	defer b.Unsubscribe(everything)

	b.PublishRecordEvent(KindCreated, "case", 1)
	b.PublishRecordEvent(KindDeleted, "target", 2)

	got := drain(targetsOnly)
	// case.created is filtered, dashboard.updated is for everyone.
	if len(got) != 2 || !strings.Contains(got[0], DashboardEvent) || !strings.Contains(got[1], "target.deleted") {
		t.Errorf("filtered stream = %q", got)
	}
	if all := drain(everything); len(all) != 3 {
		t.Errorf("unfiltered stream has %d messages, want 3", len(all))
	}
}

// syncRecorder guards the body so the test can read it while the handler writes.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestServeHTTP(t *testing.T) {
	b := NewBroker(time.Hour, WithPingInterval(30*time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events?entity=investigation", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}
	b.PublishRecordEvent(KindUpdated, "case", 4)
	b.PublishRecordEvent(KindUpdated, "investigation", 9)
	time.Sleep(80 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	if !strings.HasPrefix(body, "retry: 3000\n\n") {
		t.Errorf("stream does not start with retry hint: %q", body)
	}
	if !strings.Contains(body, "event: investigation.updated") {
		t.Errorf("missing investigation event: %q", body)
	}
	if strings.Contains(body, "event: case.updated") {
		t.Errorf("filtered event delivered: %q", body)
	}
	if !strings.Contains(body, ": ping\n\n") {
		t.Errorf("no keep-alive ping: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe(nil)
	defer b.Unsubscribe(ch)

	for i := 0; i < clientBuffer+6; i++ {
		b.Publish(Event{Type: "test", Data: map[string]int{"i": i}})
	}
	if n := len(drain(ch)); n != clientBuffer {
		t.Errorf("buffered = %d, want %d", n, clientBuffer)
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe(nil)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: "case.updated"})
	b.PublishRecordEvent(KindUpdated, "case", 1)
	if ch := b.Subscribe(nil); ch == nil {
		t.Fatal("Subscribe after Close returned nil")
	}
}
