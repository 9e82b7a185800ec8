package entities

import (
	"encoding/json"
	"fmt"
)

// EncodeEvent сериализует событие в JSON для хранения или публикации.
func EncodeEvent(event Event) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("encoding event: %w", ErrUnknownEvent)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", event.EventType(), err)
	}
	return payload, nil
}

// DecodeEvent восстанавливает событие по его типу и JSON-представлению.
func DecodeEvent(eventType string, payload []byte) (Event, error) {
	switch eventType {
	case EventUserCreated:
		var e UserCreated
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decoding %s event: %w", eventType, err)
		}
		return e, nil
	case EventUserReplaced:
		var e UserReplaced
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decoding %s event: %w", eventType, err)
		}
		return e, nil
	case EventUserAuthenticated:
		var e UserAuthenticated
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decoding %s event: %w", eventType, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("decoding %q: %w", eventType, ErrUnknownEvent)
	}
}
