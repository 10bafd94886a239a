package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/sedwarp/schema"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func sampleResult() schema.AlignmentResult {
	return schema.AlignmentResult{
		Core: "1100", Variable: "d18O", DataFile: "data/core_1100_d18O.csv", Reference: "LR04stack",
		SimpleDistance: 3.5, BestDistance: 1.25, BestTimes: []float64{120, 130}, TargetTime: 120,
		Path:       make([]schema.PathPair, 7),
		ComputedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestBuildMessage tests the key and payload of an alignment event.
func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("run-1", sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "1100/d18O", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "run-1", string(msg.Headers[0].Value))

	var event AlignmentEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, 7, event.PathLength)
	assert.Equal(t, []float64{120, 130}, event.BestTimes)
	assert.Equal(t, 120.0, event.TargetTime)
	assert.False(t, event.Cached)
}

// TestPublish tests delivery and error wrapping.
func TestPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		w := &mockWriter{}
		w.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 && string(msgs[0].Key) == "1100/d18O"
		})).Return(nil).Once()
		w.On("Close").Return(nil).Once()

		p := newKafkaPublisher(w, "sedwarp.alignments")
		require.NoError(t, p.Publish(ctx, "run-1", sampleResult()))
		require.NoError(t, p.Close())
		w.AssertExpectations(t)
	})

	t.Run("broker failure", func(t *testing.T) {
		boom := errors.New("leader not available")
		w := &mockWriter{}
		w.On("WriteMessages", ctx, mock.Anything).Return(boom).Once()

		p := newKafkaPublisher(w, "sedwarp.alignments")
		err := p.Publish(ctx, "run-1", sampleResult())
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "publishing to kafka")
	})
}

// TestNew tests the publisher selection.
func TestNew(t *testing.T) {
	p, err := New(nil, "")
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), "run", sampleResult()))
	assert.NoError(t, p.Close())

	p, err = New([]string{"localhost:9092"}, "sedwarp.alignments")
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)
	assert.NoError(t, p.Close())

	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)
	_, err = NewKafkaPublisher(nil, "topic")
	assert.Error(t, err)
}
