package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/metrics"
	"notekeeper-be/internal/service"
	"notekeeper-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testTopic = "notes.events"

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
	err    error
	got    chan struct{}
}

func newRecordingSink(err error) *recordingSink {
	return &recordingSink{err: err, got: make(chan struct{}, 16)}
}

func (s *recordingSink) Publish(_ context.Context, event events.Event) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.got <- struct{}{}
	return s.err
}

func (s *recordingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relayed event")
	}
}

func (s *recordingSink) all() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.Event(nil), s.events...)
}

func TestNoteEventRelay_ForwardsToSink(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	m := metrics.NewTestManager()
	sink := newRecordingSink(nil)

	ctx, cancel := context.WithCancel(context.Background())
	relay := service.NewNoteEventRelay(pubSub, testTopic, sink, m, logger.NewNopLogger())
	require.NoError(t, relay.Run(ctx))

	publisher := service.NewNoteEventPublisher(testTopic, pubSub)
	noteId, ownerId := uuid.New(), uuid.New()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, publisher.Publish(ctx, events.NewNoteEvent(events.NoteCreated, noteId, ownerId, "groceries", at)))

	sink.wait(t)
	got := sink.all()
	require.Len(t, got, 1)
	assert.Equal(t, events.NoteCreated, got[0].EventType())
	assert.Equal(t, noteId.String(), got[0].Payload()["note_id"])
	assert.Equal(t, ownerId.String(), got[0].Payload()["owner_id"])
	assert.Equal(t, "groceries", got[0].Payload()["title"])
	assert.True(t, at.Equal(got[0].Timestamp()))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.CounterNoteEvents.WithLabelValues(events.NoteCreated, "ok")) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, pubSub.Close())
}

func TestNoteEventRelay_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		sink    *recordingSink
		outcome string
	}{
		{name: "sink error", sink: newRecordingSink(errors.New("nats down")), outcome: "error"},
		{name: "no sink", sink: nil, outcome: "skipped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

			pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
			m := metrics.NewTestManager()

			var sink service.EventSink
			if tt.sink != nil {
				sink = tt.sink
			}

			ctx, cancel := context.WithCancel(context.Background())
			relay := service.NewNoteEventRelay(pubSub, testTopic, sink, m, logger.NewNopLogger())
			require.NoError(t, relay.Run(ctx))

			publisher := service.NewNoteEventPublisher(testTopic, pubSub)
			require.NoError(t, publisher.Publish(ctx, events.NewNoteEvent(events.NoteDeleted, uuid.New(), uuid.New(), "", time.Now())))

			assert.Eventually(t, func() bool {
				return testutil.ToFloat64(m.CounterNoteEvents.WithLabelValues(events.NoteDeleted, tt.outcome)) == 1
			}, 2*time.Second, 10*time.Millisecond)

			cancel()
			require.NoError(t, pubSub.Close())
		})
	}
}

func TestNoteEventRelay_InvalidPayloadIsAcked(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	m := metrics.NewTestManager()
	sink := newRecordingSink(nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, service.NewNoteEventRelay(pubSub, testTopic, sink, m, logger.NewNopLogger()).Run(ctx))

	require.NoError(t, pubSub.Publish(testTopic, message.NewMessage(watermill.NewUUID(), []byte("{not json"))))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.CounterNoteEvents.WithLabelValues("unknown", "invalid")) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, sink.all())

	cancel()
	require.NoError(t, pubSub.Close())
}
