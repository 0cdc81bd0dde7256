package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affiliatelink-go/internal/config"
	"affiliatelink-go/internal/queue"
	"affiliatelink-go/internal/repository"
	"affiliatelink-go/internal/testutil"
)

func TestConsumer_StoresClick(t *testing.T) {
	clicks := repository.NewClickRepository(testutil.OpenDB(t))
	consumer := NewConsumer(clicks)
	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	task, err := queue.NewClickTask(queue.ClickPayload{LinkID: 4, IPAddress: "203.0.113.8", Timestamp: at})
	require.NoError(t, err)
	require.NoError(t, consumer.handleClickRecord(context.Background(), task))

	total, err := clicks.CountDistinctIPs(context.Background(), 4, at.Truncate(24*time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestConsumer_MalformedPayloadSkipsRetry(t *testing.T) {
	consumer := NewConsumer(repository.NewClickRepository(testutil.OpenDB(t)))

	err := consumer.handleClickRecord(context.Background(), asynq.NewTask(queue.TaskClickRecord, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestConsumer_IgnoresMissingLinkID(t *testing.T) {
	consumer := NewConsumer(repository.NewClickRepository(testutil.OpenDB(t)))
	task, err := queue.NewClickTask(queue.ClickPayload{IPAddress: "203.0.113.8"})
	require.NoError(t, err)

	assert.NoError(t, consumer.handleClickRecord(context.Background(), task))
}

func TestNewService_Disabled(t *testing.T) {
	_, err := NewService(config.QueueConfig{}, NewConsumer(nil))
	assert.Error(t, err)
}
