// Package notify queues outbound marketplace notifications for the mailer.
// Messages are JSON documents pushed onto a Redis list; rendering and delivery happen elsewhere.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Kind identifies the mail template the mailer renders.
type Kind string

const (
	KindBriefResponseReceived Kind = "brief_response_received"
	KindBriefClosed           Kind = "brief_closed"
	KindSellerUnsuccessful    Kind = "seller_unsuccessful"
	KindTeamLeadAdded         Kind = "team_lead_added"
	KindTeamMemberAdded       Kind = "team_member_added"
)

// Notification is one queued message.
type Notification struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	To        []string       `json:"to"`
	Subject   string         `json:"subject"`
	Params    map[string]any `json:"params,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Notifier enqueues notifications.
type Notifier interface {
	Enqueue(ctx context.Context, n *Notification) error
}

// RedisQueue pushes notifications onto a Redis list. Consumers BRPOP from the other end.
type RedisQueue struct {
	client   redis.Cmdable
	key      string
	enqueued *prometheus.CounterVec
}

// NewRedisQueue creates a queue on key and registers its counter on reg.
func NewRedisQueue(client redis.Cmdable, key string, reg prometheus.Registerer) (*RedisQueue, error) {
	q := &RedisQueue{
		client: client,
		key:    key,
		enqueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_notifications_enqueued_total",
				Help: "Total number of notifications pushed to the mail queue.",
			},
			[]string{"kind"},
		),
	}
	if err := reg.Register(q.enqueued); err != nil {
		return nil, err
	}
	return q, nil
}

var _ Notifier = (*RedisQueue)(nil)

// Enqueue fills in the id and timestamp when missing and pushes the message.
func (q *RedisQueue) Enqueue(ctx context.Context, n *Notification) error {
	if len(n.To) == 0 {
		return fmt.Errorf("notification %s has no recipients", n.Kind)
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	q.enqueued.WithLabelValues(string(n.Kind)).Inc()
	return nil
}

// Truncate shortens s to max runes followed by "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
