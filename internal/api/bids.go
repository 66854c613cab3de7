package api

import (
	"context"
	"net/http"

	"github.com/TheRealCocky/Leilao-client/internal/auction"
)

// CreateBidRequest is the payload for placing a bid.
type CreateBidRequest struct {
	AuctionID string  `json:"auctionId"`
	Amount    float64 `json:"amount"`
}

// CreateBid places a bid. The backend is the final arbiter of validity; a
// domain rejection (bid too low, auction ended) comes back as *Error.
func (c *Client) CreateBid(ctx context.Context, req CreateBidRequest) (*auction.Bid, error) {
	var bid auction.Bid
	if err := c.do(ctx, http.MethodPost, "/bids", req, &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

// BidsByAuction returns the bid history for an auction.
func (c *Client) BidsByAuction(ctx context.Context, auctionID string) ([]auction.Bid, error) {
	if auctionID == "" {
		return nil, ErrMissingAuctionID
	}
	var bids []auction.Bid
	if err := c.do(ctx, http.MethodGet, "/bids/auction/"+auctionID, nil, &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// BidsByUser returns the bids placed by a user.
func (c *Client) BidsByUser(ctx context.Context, userID string) ([]auction.Bid, error) {
	var bids []auction.Bid
	if err := c.do(ctx, http.MethodGet, "/bids/user/"+userID, nil, &bids); err != nil {
		return nil, err
	}
	return bids, nil
}
