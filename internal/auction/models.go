package auction

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an auction as reported by the backend.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is one the backend can emit.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusClosed:
		return true
	default:
		return false
	}
}

// StatusFromEnd derives the status of an auction from its end time.
func StatusFromEnd(endTime, now time.Time) Status {
	if now.Before(endTime) {
		return StatusOpen
	}
	return StatusClosed
}

// Auction is the client-side projection of an auction. It is owned by the
// backend; the client merges push deltas into the fetched copy.
type Auction struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	StartingPrice float64   `json:"startingPrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	EndTime       time.Time `json:"endTime"`
	Status        Status    `json:"status,omitempty"`
	OwnerID       string    `json:"ownerId,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// UnmarshalJSON normalizes the backend's dual identity shape (`id` or `_id`)
// into the single canonical ID field.
func (a *Auction) UnmarshalJSON(data []byte) error {
	type alias Auction
	aux := struct {
		*alias
		ID    string `json:"id"`
		AltID string `json:"_id"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.ID = aux.ID
	if a.ID == "" {
		a.ID = aux.AltID
	}
	return nil
}

// Bid is a user's offer against an auction. Immutable once created.
type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auctionId"`
	UserID    string    `json:"userId,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON normalizes identity and the nested user shape the backend
// attaches to bid history entries.
func (b *Bid) UnmarshalJSON(data []byte) error {
	type alias Bid
	aux := struct {
		*alias
		ID    string `json:"id"`
		AltID string `json:"_id"`
		User  *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.ID = aux.ID
	if b.ID == "" {
		b.ID = aux.AltID
	}
	if aux.User != nil {
		if b.UserID == "" {
			b.UserID = aux.User.ID
		}
		if b.UserName == "" {
			b.UserName = aux.User.Name
		}
	}
	return nil
}

// WinningBid returns the best-effort winner from the known bid list: the
// maximum amount, ties broken by earliest CreatedAt. Returns nil when no
// bids are known. The known list is only as complete as what was fetched
// plus pushed; authoritative settlement lives server-side.
func WinningBid(bids []Bid) *Bid {
	var winner *Bid
	for i := range bids {
		b := &bids[i]
		switch {
		case winner == nil:
			winner = b
		case b.Amount > winner.Amount:
			winner = b
		case b.Amount == winner.Amount && b.CreatedAt.Before(winner.CreatedAt):
			winner = b
		}
	}
	if winner == nil {
		return nil
	}
	w := *winner
	return &w
}
