package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches []LogBatch
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.(LogBatch))
	return nil
}

func TestCollectorDeduplicatesErrors(t *testing.T) {
	pub := &capturePublisher{}
	var buf bytes.Buffer
	l := NewWriter(&buf)
	l.AddCollector(&CollectionConfig{Service: "tradesim", TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("backend unavailable", String("currency_id", "btc"), Error(errors.New("timeout")))
	}
	l.Info("not collected")
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.topic != "logs" {
		t.Fatalf("topic = %q", pub.topic)
	}
	if len(pub.batches) != 1 || len(pub.batches[0].Entries) != 1 {
		t.Fatalf("expected one batch with one entry, got %+v", pub.batches)
	}
	if pub.batches[0].ID == "" || pub.batches[0].Service != "tradesim" {
		t.Fatalf("batch envelope not stamped: %+v", pub.batches[0])
	}
	if got := pub.batches[0].Entries[0].Count; got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}
	if !strings.Contains(buf.String(), "not collected") {
		t.Fatalf("info entry missing from output: %s", buf.String())
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("component", "refresher"))
	l.Info("tick", Float64("price", 101.5))

	out := buf.String()
	if !strings.Contains(out, `"component":"refresher"`) || !strings.Contains(out, `"price":101.5`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "logs", Publisher: pub})

	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", map[string]interface{}{"k": 1}, "x.go:2")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(pub.batches))
	}
	entries := pub.batches[0].Entries
	if len(entries) != 2 || entries[0].Message != "a" || entries[0].Count != 2 {
		t.Fatalf("entries not ordered by count: %+v", entries)
	}
}
