package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Record is the canonical audit entry for one pipeline outcome.
type Record struct {
	ID           string    `json:"id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	RequestType  string    `json:"request_type"`
	Fingerprint  string    `json:"fingerprint,omitempty"`
	VisitorID    string    `json:"visitor_id,omitempty"`
	IP           string    `json:"ip,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Success      bool      `json:"success"`
	Reason       string    `json:"reason,omitempty"`
	SuspectedBot bool      `json:"suspected_bot,omitempty"`
	Score        int       `json:"score,omitempty"`
}

// Sink receives emitted audit records.
type Sink interface {
	Emit(ctx context.Context, record Record)
}

// NoOpSink drops audit records.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Record) {}

// ChannelSink writes audit records into a buffered channel.
type ChannelSink struct {
	records chan Record
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		records: make(chan Record, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, record Record) {
	select {
	case s.records <- record:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Records() <-chan Record {
	return s.records
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, record Record) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
