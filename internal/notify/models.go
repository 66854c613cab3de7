// Package notify holds the notification model and the reconciler that merges
// the pulled history with the push stream into one deduplicated view.
package notify

import (
	"encoding/json"
	"time"
)

// Notification is a message addressed to one user. It can arrive via the
// history fetch (batch) or the push channel (singleton); only the fetched
// copy carries a trustworthy Read flag.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON normalizes the backend's dual identity shape (`id` or `_id`).
func (n *Notification) UnmarshalJSON(data []byte) error {
	type alias Notification
	aux := struct {
		*alias
		ID    string `json:"id"`
		AltID string `json:"_id"`
	}{alias: (*alias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.ID = aux.ID
	if n.ID == "" {
		n.ID = aux.AltID
	}
	return nil
}
