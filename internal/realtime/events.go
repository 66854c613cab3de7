package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/TheRealCocky/Leilao-client/internal/auction"
	"github.com/TheRealCocky/Leilao-client/internal/notify"
)

// EventType identifies the kind of push event carried by an envelope.
type EventType string

const (
	EventAuctionUpdated EventType = "auctionUpdated"
	EventNewBid         EventType = "newBid"
	EventNotification   EventType = "notification"

	// eventJoin is emitted by the client to enter a user room.
	eventJoin EventType = "join"
)

// Envelope is the wire format for every frame on the channel, in both
// directions: the event name plus an event-specific payload.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewBidPayload is the payload of a newBid event.
type NewBidPayload struct {
	AuctionID string      `json:"auctionId"`
	Bid       auction.Bid `json:"bid"`
}

// ParseEventPayload decodes an envelope's data into the payload type for its
// event kind. Unknown event kinds return (nil, nil) and are dropped by the
// dispatcher.
func ParseEventPayload(env *Envelope) (interface{}, error) {
	switch env.Event {
	case EventAuctionUpdated:
		var patch auction.Patch
		if err := json.Unmarshal(env.Data, &patch); err != nil {
			return nil, err
		}
		return patch, nil

	case EventNewBid:
		var payload NewBidPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventNotification:
		var n notify.Notification
		if err := json.Unmarshal(env.Data, &n); err != nil {
			return nil, err
		}
		return n, nil

	default:
		return nil, nil
	}
}

// joinFrame encodes the join envelope for a room.
func joinFrame(roomID string) ([]byte, error) {
	data, err := json.Marshal(roomID)
	if err != nil {
		return nil, err
	}
	frame, err := json.Marshal(Envelope{Event: eventJoin, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode join frame: %w", err)
	}
	return frame, nil
}
