// Package auctionview holds the client-side state of one observed auction:
// the REST-fetched baseline merged with push deltas, the open/closed
// lifecycle, and the best-effort winner once the auction closes.
package auctionview

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/TheRealCocky/Leilao-client/internal/auction"
)

// State is the lifecycle state of the view.
type State string

const (
	StateLoading State = "LOADING"
	StateOpen    State = "OPEN"
	StateClosed  State = "CLOSED"
)

// Snapshot is a copy of the view for rendering.
type Snapshot struct {
	State   State
	Auction auction.Auction
	Bids    []auction.Bid
	Winner  *auction.Bid
}

// bufferedEvent is a push event that arrived before the baseline fetch
// resolved. Replayed in arrival order once the baseline lands.
type bufferedEvent struct {
	patch *auction.Patch
	bid   *auction.Bid
}

// View reconciles one auction's fetched state with push events.
//
// Lifecycle: LOADING -> OPEN -> CLOSED. CLOSED is terminal; it is entered on
// a pushed status change or on countdown expiry, whichever happens first.
type View struct {
	auctionID string
	clock     clockwork.Clock
	log       zerolog.Logger

	mu      sync.Mutex
	state   State
	auction auction.Auction
	bids    []auction.Bid
	winner  *auction.Bid
	buffer  []bufferedEvent
}

// NewView creates a view in the LOADING state for one auction id.
func NewView(auctionID string, clock clockwork.Clock, log zerolog.Logger) *View {
	return &View{
		auctionID: auctionID,
		clock:     clock,
		state:     StateLoading,
		log:       log.With().Str("auction_id", auctionID).Logger(),
	}
}

// AuctionID returns the id this view observes.
func (v *View) AuctionID() string {
	return v.auctionID
}

// SetBaseline installs the REST-fetched auction and bid history. Push events
// buffered while loading are replayed in arrival order afterwards, so the
// result is the same whether the fetch or the first push won the race.
// A re-fetch merges instead of overwriting: the held price never regresses
// and a closed view stays closed.
func (v *View) SetBaseline(a auction.Auction, bids []auction.Bid) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if a.Status == "" {
		a.Status = auction.StatusFromEnd(a.EndTime, v.clock.Now())
	}

	if v.state == StateLoading {
		v.auction = a
		v.bids = append([]auction.Bid(nil), bids...)
		v.state = StateOpen
		if a.Status == auction.StatusClosed {
			v.closeLocked()
		}

		buffered := v.buffer
		v.buffer = nil
		for _, ev := range buffered {
			if ev.patch != nil {
				v.applyPatchLocked(*ev.patch)
			}
			if ev.bid != nil {
				v.prependBidLocked(*ev.bid)
			}
		}
		v.log.Debug().Int("replayed", len(buffered)).Msg("baseline installed")
		return
	}

	// Re-fetch after state already advanced: merge field-wise.
	patch := auction.Patch{
		ID:            a.ID,
		Title:         &a.Title,
		Description:   &a.Description,
		StartingPrice: &a.StartingPrice,
		CurrentPrice:  &a.CurrentPrice,
		EndTime:       &a.EndTime,
		Status:        &a.Status,
	}
	v.applyPatchLocked(patch)
	v.bids = mergeBids(bids, v.bids)
	if v.state == StateClosed {
		v.winner = auction.WinningBid(v.bids)
	}
}

// ApplyAuctionUpdate merges a pushed partial auction projection. Updates for
// other auctions are ignored; updates arriving before the baseline are
// buffered.
func (v *View) ApplyAuctionUpdate(patch auction.Patch) {
	if patch.ID != v.auctionID {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateLoading {
		p := patch
		v.buffer = append(v.buffer, bufferedEvent{patch: &p})
		return
	}
	v.applyPatchLocked(patch)
}

// ApplyNewBid prepends a pushed bid when it belongs to this auction. Bids
// and price move independently; the price only changes on auctionUpdated.
func (v *View) ApplyNewBid(auctionID string, bid auction.Bid) {
	if auctionID != v.auctionID {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateLoading {
		b := bid
		v.buffer = append(v.buffer, bufferedEvent{bid: &b})
		return
	}
	v.prependBidLocked(bid)
}

// MarkExpired closes the view when the countdown reports expiry. The held
// EndTime is re-checked first: a pushed update may have extended the deadline
// after the countdown was armed, in which case the expiry signal is stale and
// the view stays open. No-op when already closed.
func (v *View) MarkExpired() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateOpen {
		return
	}
	if v.clock.Now().Before(v.auction.EndTime) {
		v.log.Debug().
			Time("end_time", v.auction.EndTime).
			Msg("ignoring stale expiry, deadline was extended")
		return
	}
	v.log.Info().Msg("countdown expired, closing view")
	v.closeLocked()
}

// BiddingOpen reports whether submitting a bid is still permitted.
func (v *View) BiddingOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state == StateOpen
}

// CurrentPrice returns the held price. The second return is false while the
// baseline has not loaded.
func (v *View) CurrentPrice() (float64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateLoading {
		return 0, false
	}
	return v.auction.CurrentPrice, true
}

// Snapshot returns a copy of the current view for rendering.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		State:   v.state,
		Auction: v.auction,
		Bids:    append([]auction.Bid(nil), v.bids...),
	}
	if v.winner != nil {
		w := *v.winner
		snap.Winner = &w
	}
	return snap
}

// applyPatchLocked shallow-merges present fields. The held price never
// regresses: a patch carrying a lower CurrentPrice is stale (out-of-order
// push) and that field is dropped. Caller holds v.mu.
func (v *View) applyPatchLocked(patch auction.Patch) {
	if v.state == StateClosed {
		return
	}

	if patch.Title != nil {
		v.auction.Title = *patch.Title
	}
	if patch.Description != nil {
		v.auction.Description = *patch.Description
	}
	if patch.StartingPrice != nil {
		v.auction.StartingPrice = *patch.StartingPrice
	}
	if patch.CurrentPrice != nil {
		if *patch.CurrentPrice >= v.auction.CurrentPrice {
			v.auction.CurrentPrice = *patch.CurrentPrice
		} else {
			v.log.Debug().
				Float64("held", v.auction.CurrentPrice).
				Float64("incoming", *patch.CurrentPrice).
				Msg("rejected stale price update")
		}
	}
	if patch.EndTime != nil {
		v.auction.EndTime = *patch.EndTime
	}
	if patch.Status != nil && *patch.Status == auction.StatusClosed {
		v.closeLocked()
	}
}

// prependBidLocked puts a pushed bid at the head of the list. Caller holds
// v.mu.
func (v *View) prependBidLocked(bid auction.Bid) {
	if v.state == StateClosed {
		v.log.Debug().Str("bid_id", bid.ID).Msg("dropping bid pushed after close")
		return
	}
	v.bids = append([]auction.Bid{bid}, v.bids...)
}

// closeLocked enters the terminal CLOSED state and computes the best-effort
// winner from the known bid list. Caller holds v.mu.
func (v *View) closeLocked() {
	v.state = StateClosed
	v.auction.Status = auction.StatusClosed
	v.winner = auction.WinningBid(v.bids)
	if v.winner != nil {
		v.log.Info().
			Str("bid_id", v.winner.ID).
			Float64("amount", v.winner.Amount).
			Msg("auction closed")
	} else {
		v.log.Info().Msg("auction closed with no known bids")
	}
}

// mergeBids combines a fetched history with the held list, deduplicated by
// identity, fetched entries first.
func mergeBids(fetched, held []auction.Bid) []auction.Bid {
	seen := make(map[string]bool, len(fetched))
	merged := make([]auction.Bid, 0, len(fetched)+len(held))
	for _, b := range fetched {
		seen[b.ID] = true
		merged = append(merged, b)
	}
	for _, b := range held {
		if b.ID == "" || !seen[b.ID] {
			merged = append(merged, b)
			seen[b.ID] = true
		}
	}
	return merged
}
