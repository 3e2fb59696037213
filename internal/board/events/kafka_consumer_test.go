package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func TestConsumer_Start(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	reader := &fakeReader{queue: []kafka.Message{
		{Value: mustMarshal(Event{Type: ViewRefreshed, State: serverState()})},
		{Value: []byte("garbage")},
		{Value: mustMarshal(Event{Type: ViewRefreshed, State: &models.ViewState{View: models.UnassignedView}})},
	}}
	consumer := &Consumer{reader: reader, logger: zap.New(core)}

	got := make(chan Event, 3)
	consumer.RegisterHandler(func(_ context.Context, ev Event) error {
		got <- ev
		if ev.State.View == models.UnassignedView {
			return errors.New("renderer offline")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := consumer.Start(ctx)

	for i := 0; i < 2; i++ {
		select {
		case ev := <-got:
			assert.Equal(t, ViewRefreshed, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("handler not called")
		}
	}
	cancel()
	<-done

	// The good event and the unparsable one are committed; the failed one is not.
	assert.Equal(t, 2, reader.commits())
	assert.Equal(t, 1, recorded.FilterMessage("Failed to parse event").Len())
	assert.Equal(t, 1, recorded.FilterMessage("Failed to handle event").Len())

	consumer.Close()
	require.True(t, reader.closed)
}
