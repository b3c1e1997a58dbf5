package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gridstore/service/messaging"
)

type notice struct {
	TaskKey string
	State   string
}

func TestQueue(t *testing.T) {
	queue := NewQueue[notice](DefaultConfig())
	ctx := context.Background()
	payload := notice{TaskKey: "c1/t1", State: "RUNNING"}

	require.NoError(t, queue.Publish(ctx, &payload))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, payload, *message.T())

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
	assert.Error(t, message.Nack(nil))
}

func TestQueue_Full(t *testing.T) {
	queue := NewQueue[notice](Config{QueueBuffer: 2})
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &notice{TaskKey: "c1/t1"}))
	require.NoError(t, queue.Publish(ctx, &notice{TaskKey: "c1/t2"}))
	err := queue.Publish(ctx, &notice{TaskKey: "c1/t3"})
	assert.True(t, errors.Is(err, messaging.ErrQueueFull))
	assert.Equal(t, 2, queue.Size())
}

func TestQueue_Retries(t *testing.T) {
	testCases := []struct {
		description string
		config      Config
		expectDLQ   int
	}{
		{description: "dead letter after retries", config: Config{MaxRetries: 2, DeadLetter: true}, expectDLQ: 1},
		{description: "discard after retries", config: Config{MaxRetries: 1}, expectDLQ: 0},
	}

	for _, testCase := range testCases {
		queue := NewQueue[notice](testCase.config)
		ctx := context.Background()
		require.NoError(t, queue.Publish(ctx, &notice{TaskKey: "c1/t1"}), testCase.description)

		for i := 0; i <= testCase.config.MaxRetries; i++ {
			message, err := queue.Consume(ctx)
			require.NoError(t, err, testCase.description)
			assert.Equal(t, "c1/t1", message.T().TaskKey, testCase.description)
			require.NoError(t, message.Nack(fmt.Errorf("attempt %d", i)), testCase.description)
		}
		assert.Equal(t, 0, queue.Size(), testCase.description)
		assert.Equal(t, testCase.expectDLQ, queue.DLQSize(), testCase.description)
	}
}

func TestQueue_Concurrency(t *testing.T) {
	queue := NewQueue[notice](DefaultConfig())
	ctx := context.Background()
	concurrency := 10
	messagesPerProducer := 10

	var wg sync.WaitGroup
	wg.Add(concurrency * 2)
	var consumedCount int
	var consumedMu sync.Mutex

	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < messagesPerProducer; j++ {
				message, err := queue.Consume(ctx)
				if err != nil {
					t.Errorf("Error consuming: %v", err)
					return
				}
				assert.NoError(t, message.Ack())
				consumedMu.Lock()
				consumedCount++
				consumedMu.Unlock()
			}
		}()
	}
	for i := 0; i < concurrency; i++ {
		go func(producerID int) {
			defer wg.Done()
			for j := 0; j < messagesPerProducer; j++ {
				payload := notice{TaskKey: fmt.Sprintf("c%d/t%d", producerID, j)}
				if err := queue.Publish(ctx, &payload); err != nil {
					t.Errorf("Error publishing: %v", err)
				}
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out")
	}
	assert.Equal(t, concurrency*messagesPerProducer, consumedCount)
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_ContextCancellation(t *testing.T) {
	queue := NewQueue[notice](DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	payload := notice{TaskKey: "c1/t1"}
	assert.Error(t, queue.Publish(ctx, &payload))

	ctxWithTimeout, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(ctxWithTimeout)
	assert.Error(t, err)

	require.NoError(t, queue.Publish(context.Background(), &payload))
	message, err := queue.Consume(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, message)
}
