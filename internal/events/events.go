package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to every event type to form the NATS subject.
const SubjectPrefix = "tracker."

// Event types.
const (
	UserRegistered = "user.registered"
	SessionCreated = "session.created"
	SessionRevoked = "session.revoked"
	ProjectCreated = "project.created"
	ProjectUpdated = "project.updated"
	ProjectDeleted = "project.deleted"
	TaskCreated    = "task.created"
	TaskUpdated    = "task.updated"
	TaskDeleted    = "task.deleted"
)

// Event is a committed state change.
type Event struct {
	Type       string    `json:"type"`
	UserID     uint64    `json:"user_id"`
	ResourceID uint64    `json:"resource_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with the current time.
func New(eventType string, userID, resourceID uint64) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events after the change they describe has been stored.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NATSPublisher publishes events as JSON on tracker.<type>.
type NATSPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

var _ Publisher = (*NATSPublisher)(nil)

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{
		nc:     nc,
		logger: slog.Default().With("component", "nats_publisher"),
	}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.nc.Publish(SubjectPrefix+event.Type, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.DebugContext(ctx, "Event published",
		"type", event.Type,
		"user_id", event.UserID,
		"resource_id", event.ResourceID,
	)
	return nil
}

// Connect dials NATS. An empty url yields a NoopPublisher and a nil
// connection.
func Connect(url string) (Publisher, *nats.Conn, error) {
	if url == "" {
		return NoopPublisher{}, nil, nil
	}

	nc, err := nats.Connect(url,
		nats.Name("task-tracker-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc), nc, nil
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Emit publishes event and logs a failure instead of returning it.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "Failed to publish event", "type", event.Type, "error", err)
	}
}
