// Package kafkasink is an alternate fan-out ports.Sink that republishes
// every emission onto a Kafka/Redpanda topic instead of a KUKSA-style
// broker tree, for deployments that want the signal stream mirrored into
// a log. Adapted from the teacher's own SinkNode (sink_node.go): the same
// async kgo.Client.Produce-with-callback shape, generalized from a
// generic key/value processor sink to a fixed qualified-value payload.
package kafkasink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/canzero/sigdag/ports"
	"github.com/canzero/sigdag/value"
)

// Sink publishes every emission as a JSON-encoded value.Value, keyed by
// its broker path, on a single topic.
type Sink struct {
	client *kgo.Client
	topic  string

	mu      sync.Mutex
	pending []produceResult
}

type produceResult struct {
	path string
	err  error
}

// New builds a Sink against the given brokers and topic.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("kafkasink: new client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// Resolve always succeeds: every path is a valid Kafka record key.
func (s *Sink) Resolve(path string) (ports.Handle, error) {
	return path, nil
}

// Publish produces one record per emission; delivery errors surface on
// the next call to Flush rather than blocking the driver loop, the same
// async-then-check shape as the teacher's SinkNode.Process/Flush.
func (s *Sink) Publish(handle ports.Handle, v value.Value) error {
	path := handle.(string)
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kafkasink: marshal %s: %w", path, err)
	}

	s.client.Produce(context.Background(), &kgo.Record{
		Key:   []byte(path),
		Value: payload,
		Topic: s.topic,
	}, func(_ *kgo.Record, err error) {
		s.mu.Lock()
		s.pending = append(s.pending, produceResult{path: path, err: err})
		s.mu.Unlock()
	})
	return nil
}

// Flush blocks until every in-flight produce has completed and returns
// the first error encountered, if any.
func (s *Sink) Flush(ctx context.Context) error {
	if err := s.client.Flush(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.pending {
		if r.err != nil {
			return fmt.Errorf("kafkasink: produce %s: %w", r.path, r.err)
		}
	}
	s.pending = nil
	return nil
}

// Close releases the underlying Kafka client.
func (s *Sink) Close() {
	s.client.Close()
}
