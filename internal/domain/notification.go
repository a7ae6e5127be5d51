package domain

// EventReceiveNotification is the event name pushed over the real-time channel.
const EventReceiveNotification = "ReceiveNotification"

// Notification is the payload fanned out to a user's live connections.
type Notification struct {
	Event   string `json:"event"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewNotification builds a ReceiveNotification payload.
func NewNotification(title, message string) Notification {
	return Notification{Event: EventReceiveNotification, Title: title, Message: message}
}
