package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/haani-backend/pkg/db/models"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	"github.com/angelmondragon/haani-backend/pkg/logger"
	"github.com/angelmondragon/haani-backend/pkg/types"
)

const defaultNotifyTimeout = 5 * time.Second

// Message is one notification to one recipient.
type Message struct {
	RecipientID uuid.UUID
	Kind        enums.NotificationKind
	Payload     map[string]any
}

// Notifier is what finance services depend on. Notify never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// Publisher fans notifications out to push/email workers. pkg/pubsub.Client
// implements it.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

type envelope struct {
	ID          uuid.UUID              `json:"id"`
	RecipientID uuid.UUID              `json:"recipient_id"`
	Kind        enums.NotificationKind `json:"kind"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Payload     map[string]any         `json:"payload,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Dispatcher stores in-app notifications and optionally publishes them.
type Dispatcher struct {
	repo      Repository
	publisher Publisher
	logg      *logger.Logger
	timeout   time.Duration
	now       func() time.Time
}

// DispatcherParams wires a Dispatcher. Publisher may be nil.
type DispatcherParams struct {
	Repo      Repository
	Publisher Publisher
	Logger    *logger.Logger
	Timeout   time.Duration
}

// NewDispatcher builds a best-effort notification dispatcher.
func NewDispatcher(params DispatcherParams) *Dispatcher {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &Dispatcher{
		repo:      params.Repo,
		publisher: params.Publisher,
		logg:      params.Logger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Notify persists and publishes msg. Failures are logged and swallowed; the
// state transition that triggered the notification has already committed.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	if d == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	if d.logg != nil {
		ctx = d.logg.WithFields(ctx, map[string]any{
			"recipient_id":      msg.RecipientID.String(),
			"notification_kind": string(msg.Kind),
		})
	}

	if msg.RecipientID == uuid.Nil || !msg.Kind.IsValid() {
		d.logWarn(ctx, "notification dropped: invalid recipient or kind")
		return
	}

	title, body := render(msg.Kind, msg.Payload)
	row := &models.Notification{
		ID:          uuid.New(),
		RecipientID: msg.RecipientID,
		Kind:        msg.Kind,
		Title:       title,
		Message:     body,
		CreatedAt:   d.now().UTC(),
	}
	if len(msg.Payload) > 0 {
		row.Payload = types.JSONMap(msg.Payload)
	}

	if d.repo != nil {
		if err := d.repo.Create(ctx, row); err != nil {
			d.logError(ctx, "store notification", err)
		}
	}

	if d.publisher == nil {
		return
	}
	data, err := json.Marshal(envelope{
		ID:          row.ID,
		RecipientID: row.RecipientID,
		Kind:        row.Kind,
		Title:       row.Title,
		Message:     row.Message,
		Payload:     msg.Payload,
		CreatedAt:   row.CreatedAt,
	})
	if err != nil {
		d.logError(ctx, "encode notification", err)
		return
	}
	if _, err := d.publisher.Publish(ctx, data, map[string]string{
		"kind":         string(msg.Kind),
		"recipient_id": msg.RecipientID.String(),
	}); err != nil {
		d.logError(ctx, "publish notification", err)
	}
}

func (d *Dispatcher) logWarn(ctx context.Context, msg string) {
	if d.logg != nil {
		d.logg.Warn(ctx, msg)
	}
}

func (d *Dispatcher) logError(ctx context.Context, msg string, err error) {
	if d.logg != nil {
		d.logg.Error(ctx, msg, err)
	}
}

// Nop discards notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Message) {}
