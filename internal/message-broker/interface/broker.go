package message_broker

import "context"

// MessageHandler processes one delivery. A nil return acknowledges the
// message; an error hands it back to the broker for redelivery.
type MessageHandler func(body []byte, ctx context.Context) error

type MessageBrokerInterface interface {
	PublishObject(exchange string, data interface{}, priority int, ctx context.Context) error
	ListenForMessages(exchange string, priority int, callback MessageHandler) error
	Close()
}
