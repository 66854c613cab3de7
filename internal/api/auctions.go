package api

import (
	"context"
	"net/http"
	"time"

	"github.com/TheRealCocky/Leilao-client/internal/auction"
)

// CreateAuctionRequest is the payload for creating an auction. Requires a
// SELLER session; the backend enforces the role.
type CreateAuctionRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartingPrice float64   `json:"startingPrice"`
	EndTime       time.Time `json:"endTime"`
}

// UpdateAuctionRequest carries the fields to change; nil fields are omitted.
type UpdateAuctionRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	StartingPrice *float64   `json:"startingPrice,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	Status        *string    `json:"status,omitempty"`
}

// ListAuctions returns all auctions.
func (c *Client) ListAuctions(ctx context.Context) ([]auction.Auction, error) {
	var auctions []auction.Auction
	if err := c.do(ctx, http.MethodGet, "/auctions", nil, &auctions); err != nil {
		return nil, err
	}
	return auctions, nil
}

// GetAuction returns one auction by id. An empty id fails fast without a
// network call.
func (c *Client) GetAuction(ctx context.Context, id string) (*auction.Auction, error) {
	if id == "" {
		return nil, ErrMissingAuctionID
	}
	var a auction.Auction
	if err := c.do(ctx, http.MethodGet, "/auctions/"+id, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAuction creates an auction owned by the authenticated seller.
func (c *Client) CreateAuction(ctx context.Context, req CreateAuctionRequest) (*auction.Auction, error) {
	var a auction.Auction
	if err := c.do(ctx, http.MethodPost, "/auctions", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAuction patches an auction.
func (c *Client) UpdateAuction(ctx context.Context, id string, req UpdateAuctionRequest) (*auction.Auction, error) {
	if id == "" {
		return nil, ErrMissingAuctionID
	}
	var a auction.Auction
	if err := c.do(ctx, http.MethodPatch, "/auctions/"+id, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAuction removes an auction.
func (c *Client) DeleteAuction(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingAuctionID
	}
	return c.do(ctx, http.MethodDelete, "/auctions/"+id, nil, nil)
}
