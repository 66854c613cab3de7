package auction

import (
	"encoding/json"
	"time"
)

// Patch is a partial auction projection carried by an auctionUpdated push
// event. Nil fields were absent from the payload and must not overwrite
// held state.
type Patch struct {
	ID            string     `json:"id"`
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	StartingPrice *float64   `json:"startingPrice"`
	CurrentPrice  *float64   `json:"currentPrice"`
	EndTime       *time.Time `json:"endTime"`
	Status        *Status    `json:"status"`
}

// UnmarshalJSON normalizes the dual identity shape, same as Auction.
func (p *Patch) UnmarshalJSON(data []byte) error {
	type alias Patch
	aux := struct {
		*alias
		ID    string `json:"id"`
		AltID string `json:"_id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ID = aux.ID
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}
