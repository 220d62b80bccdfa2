package audit

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"alumni-portal/pkg/logger"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/echoadapter"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ActorType represents the type of entity performing an action
type ActorType string

const (
	ActorTypeUser      ActorType = "user"
	ActorTypeAnonymous ActorType = "anonymous"
	ActorTypeSystem    ActorType = "system"
)

// ResourceType represents the type of resource being acted upon
type ResourceType string

const (
	ResourceTypeRoute   ResourceType = "route"
	ResourceTypeUser    ResourceType = "user"
	ResourceTypeSession ResourceType = "session"
)

// Action represents the action being performed
type Action string

const (
	ActionAccess            Action = "access"
	ActionLogin             Action = "login"
	ActionLogout            Action = "logout"
	ActionCreate            Action = "create"
	ActionUpdateRole        Action = "update_role"
	ActionUpdatePermissions Action = "update_permissions"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

const defaultRecentLimit = 100

// Event represents an audit event
type Event struct {
	ID           uuid.UUID      `json:"id"`
	EventType    string         `json:"event_type"`
	ActorType    ActorType      `json:"actor_type"`
	ActorID      string         `json:"actor_id,omitempty"`
	ResourceType ResourceType   `json:"resource_type"`
	Resource     string         `json:"resource,omitempty"`
	Action       Action         `json:"action"`
	Status       Status         `json:"status"`
	Reason       rbac.Reason    `json:"reason,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Logger writes audit events as JSON lines and keeps the most recent ones
// for the admin console.
type Logger struct {
	out    *log.Logger
	mu     sync.Mutex
	recent []*Event
	keep   int
	now    func() time.Time
}

// NewLogger creates a new audit logger writing to w. keep bounds the
// in-memory window returned by Query.
func NewLogger(w io.Writer, keep int) *Logger {
	if keep <= 0 {
		keep = defaultRecentLimit
	}
	return &Logger{
		out:  log.New(w, "audit: ", log.LstdFlags),
		keep: keep,
		now:  time.Now,
	}
}

// Log records an audit event
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = l.now().UTC()
	}
	if event.Metadata != nil {
		event.Metadata = logger.SanitizeMap(event.Metadata)
	}
	event.ErrorMessage = logger.SanitizeLogMessage(event.ErrorMessage)

	line, err := json.Marshal(event)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Print(string(line))
	l.recent = append(l.recent, event)
	if over := len(l.recent) - l.keep; over > 0 {
		l.recent = append([]*Event(nil), l.recent[over:]...)
	}
	return nil
}

// LogFromContext creates and logs an audit event from an Echo context
func (l *Logger) LogFromContext(c echo.Context, resourceType ResourceType, resource string, action Action, status Status, metadata map[string]any) error {
	event := l.eventFromContext(c, resourceType, resource, action, status)
	event.Metadata = metadata
	return l.record(c, event)
}

// LogError logs a failed action with error details
func (l *Logger) LogError(c echo.Context, resourceType ResourceType, resource string, action Action, err error) error {
	event := l.eventFromContext(c, resourceType, resource, action, StatusFailure)
	event.ErrorMessage = err.Error()
	return l.record(c, event)
}

// ObserveDecision records denied guard decisions. Allowed decisions are not
// audited; they are counted by the metrics observer.
func (l *Logger) ObserveDecision(c echo.Context, d rbac.Decision) {
	if d.Allowed {
		return
	}
	event := l.eventFromContext(c, ResourceTypeRoute, c.Request().Method+" "+c.Request().URL.Path, ActionAccess, StatusDenied)
	event.Reason = d.Reason
	event.ErrorMessage = d.Detail
	_ = l.record(c, event)
}

func (l *Logger) record(c echo.Context, event *Event) error {
	if err := l.Log(c.Request().Context(), event); err != nil {
		c.Logger().Warnf("audit log failed: %v", err)
		return err
	}
	return nil
}

func (l *Logger) eventFromContext(c echo.Context, resourceType ResourceType, resource string, action Action, status Status) *Event {
	event := &Event{
		EventType:    string(action) + "_" + string(resourceType),
		ResourceType: resourceType,
		Resource:     resource,
		Action:       action,
		Status:       status,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
	}

	// Extract actor information from context
	if subject := echoadapter.GetAuthSubject(c); subject.Authenticated {
		event.ActorType = ActorTypeUser
		event.ActorID = subject.ID
	} else {
		event.ActorType = ActorTypeAnonymous
	}
	return event
}

// QueryFilter narrows the recent event window.
type QueryFilter struct {
	ActorID      string
	ResourceType *ResourceType
	Action       *Action
	Status       *Status
	Limit        int
}

// Query returns matching recent events, newest first.
func (l *Logger) Query(filter QueryFilter) []*Event {
	limit := filter.Limit
	if limit <= 0 || limit > l.keep {
		limit = l.keep
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Event, 0, limit)
	for i := len(l.recent) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.recent[i]
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.ResourceType != nil && e.ResourceType != *filter.ResourceType {
			continue
		}
		if filter.Action != nil && e.Action != *filter.Action {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out
}
