package service

// Event names broadcast to realtime subscribers
const (
	EventItemCreated          = "item.created"
	EventItemUpdated          = "item.updated"
	EventItemDeleted          = "item.deleted"
	EventRequestSubmitted     = "request.submitted"
	EventRequestStatusChanged = "request.status_changed"
)

// EventPublisher fans domain events out to connected clients.
// Publish must not block the caller.
type EventPublisher interface {
	Publish(event string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
