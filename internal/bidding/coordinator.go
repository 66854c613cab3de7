// Package bidding mediates bid submission against the race-prone client
// view. Local checks stop obviously invalid bids before any network call;
// the backend stays the final arbiter of everything else.
package bidding

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/TheRealCocky/Leilao-client/internal/api"
	"github.com/TheRealCocky/Leilao-client/internal/auction"
	"github.com/TheRealCocky/Leilao-client/internal/auctionview"
)

var (
	// ErrInvalidBid rejects a bid at or below the currently known price.
	ErrInvalidBid = errors.New("bid must be higher than the current price")
	// ErrUnauthenticated rejects a bid without a session credential.
	ErrUnauthenticated = errors.New("login required to place a bid")
	// ErrAuctionClosed rejects a bid once the observed auction closed.
	ErrAuctionClosed = errors.New("auction is closed")
	// ErrViewLoading rejects a bid before the baseline fetch resolved.
	ErrViewLoading = errors.New("auction is still loading")
)

// BidCreator is the slice of the REST client the coordinator needs.
type BidCreator interface {
	CreateBid(ctx context.Context, req api.CreateBidRequest) (*auction.Bid, error)
}

// TokenSource reports the held bearer credential, empty when logged out.
type TokenSource interface {
	Token() string
}

// Coordinator validates and submits bids for one observed auction.
type Coordinator struct {
	view   *auctionview.View
	bids   BidCreator
	tokens TokenSource
	log    zerolog.Logger
}

// NewCoordinator creates a coordinator bound to a view.
func NewCoordinator(view *auctionview.View, bids BidCreator, tokens TokenSource, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		view:   view,
		bids:   bids,
		tokens: tokens,
		log:    log.With().Str("auction_id", view.AuctionID()).Logger(),
	}
}

// Submit places a bid. Rejections against local state (amount at or below
// the known price, closed auction, missing session) return before any
// network call; otherwise exactly one call is issued.
//
// Success does not touch the view: the authoritative reflection of the bid
// arrives later through the push channel. Between the local check and the
// backend's answer someone else may out-bid; that comes back as a domain
// error (api.IsDomainError) carrying the backend's message, distinct from
// transport failures.
func (c *Coordinator) Submit(ctx context.Context, amount float64) (*auction.Bid, error) {
	price, ok := c.view.CurrentPrice()
	if !ok {
		return nil, ErrViewLoading
	}
	if !c.view.BiddingOpen() {
		return nil, ErrAuctionClosed
	}
	if amount <= price {
		return nil, fmt.Errorf("%w (current price %.2f)", ErrInvalidBid, price)
	}
	if c.tokens.Token() == "" {
		return nil, ErrUnauthenticated
	}

	bid, err := c.bids.CreateBid(ctx, api.CreateBidRequest{
		AuctionID: c.view.AuctionID(),
		Amount:    amount,
	})
	if err != nil {
		c.log.Warn().Err(err).Float64("amount", amount).Msg("bid rejected")
		return nil, err
	}

	c.log.Info().Str("bid_id", bid.ID).Float64("amount", amount).Msg("bid submitted")
	return bid, nil
}
