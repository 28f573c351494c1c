package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q, err := NewRedisQueue(client, "test:notifications", prometheus.NewRegistry())
	require.NoError(t, err)
	return q, mr
}

func TestRedisQueue_Enqueue(t *testing.T) {
	q, mr := setupQueue(t)

	n := &Notification{
		Kind:    KindBriefClosed,
		To:      []string{"buyer@agency.gov.au"},
		Subject: "Your brief has closed",
		Params:  map[string]any{"brief_id": 4},
	}
	require.NoError(t, q.Enqueue(context.Background(), n))

	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	items, err := mr.List("test:notifications")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got Notification
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, KindBriefClosed, got.Kind)
	assert.Equal(t, []string{"buyer@agency.gov.au"}, got.To)
	assert.Equal(t, float64(4), got.Params["brief_id"])
	assert.Equal(t, float64(1), testutil.ToFloat64(q.enqueued.WithLabelValues(string(KindBriefClosed))))
}

func TestRedisQueue_Enqueue_NoRecipients(t *testing.T) {
	q, mr := setupQueue(t)

	err := q.Enqueue(context.Background(), &Notification{Kind: KindBriefClosed})

	assert.Error(t, err)
	assert.False(t, mr.Exists("test:notifications"))
}

func TestRedisQueue_Enqueue_RedisDown(t *testing.T) {
	q, mr := setupQueue(t)
	mr.Close()

	err := q.Enqueue(context.Background(), &Notification{Kind: KindBriefClosed, To: []string{"a@b.com"}})

	assert.ErrorContains(t, err, "enqueue notification")
	assert.Equal(t, float64(0), testutil.ToFloat64(q.enqueued.WithLabelValues(string(KindBriefClosed))))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 30))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
}
