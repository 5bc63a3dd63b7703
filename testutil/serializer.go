package testutil

import (
	"sync/atomic"

	"github.com/kbukum/restclient/serializer"
)

// CountingSerializer wraps a Serializer and counts its calls.
type CountingSerializer struct {
	inner        serializer.Serializer
	serialized   atomic.Int64
	deserialized atomic.Int64
	lastFormat   atomic.Value
	lastCtx      atomic.Value
}

// compile-time assertion
var _ serializer.Serializer = (*CountingSerializer)(nil)

// NewCountingSerializer wraps inner, or the default registry when inner is nil.
func NewCountingSerializer(inner serializer.Serializer) *CountingSerializer {
	if inner == nil {
		inner = serializer.New()
	}
	return &CountingSerializer{inner: inner}
}

// Serialize implements serializer.Serializer.
func (s *CountingSerializer) Serialize(data any, format string, ctx serializer.Context) ([]byte, error) {
	s.serialized.Add(1)
	s.record(format, ctx)
	return s.inner.Serialize(data, format, ctx)
}

// Deserialize implements serializer.Serializer.
func (s *CountingSerializer) Deserialize(data []byte, target any, format string, ctx serializer.Context) error {
	s.deserialized.Add(1)
	s.record(format, ctx)
	return s.inner.Deserialize(data, target, format, ctx)
}

// SerializeCalls returns the number of Serialize calls.
func (s *CountingSerializer) SerializeCalls() int { return int(s.serialized.Load()) }

// DeserializeCalls returns the number of Deserialize calls.
func (s *CountingSerializer) DeserializeCalls() int { return int(s.deserialized.Load()) }

// LastFormat returns the format tag of the most recent call.
func (s *CountingSerializer) LastFormat() string {
	v, _ := s.lastFormat.Load().(string)
	return v
}

// LastContext returns the context passed to the most recent call.
func (s *CountingSerializer) LastContext() serializer.Context {
	v, _ := s.lastCtx.Load().(serializer.Context)
	return v
}

func (s *CountingSerializer) record(format string, ctx serializer.Context) {
	s.lastFormat.Store(format)
	if ctx == nil {
		ctx = serializer.Context{}
	}
	s.lastCtx.Store(ctx)
}
