package auctionview

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRealCocky/Leilao-client/internal/auction"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestView(t *testing.T) *View {
	t.Helper()
	return NewView("a1", clockwork.NewFakeClockAt(baseTime), zerolog.Nop())
}

func openAuction(price float64) auction.Auction {
	return auction.Auction{
		ID:           "a1",
		Title:        "Vinyl",
		CurrentPrice: price,
		EndTime:      baseTime.Add(time.Hour),
		Status:       auction.StatusOpen,
	}
}

func floatPtr(f float64) *float64 { return &f }

func statusPtr(s auction.Status) *auction.Status { return &s }

func TestView_PriceNeverRegresses(t *testing.T) {
	v := newTestView(t)
	v.SetBaseline(openAuction(100), nil)

	// A stale push carrying a lower price must be rejected.
	v.ApplyAuctionUpdate(auction.Patch{ID: "a1", CurrentPrice: floatPtr(90)})

	price, ok := v.CurrentPrice()
	require.True(t, ok)
	assert.Equal(t, 100.0, price)

	// A higher price is merged normally.
	v.ApplyAuctionUpdate(auction.Patch{ID: "a1", CurrentPrice: floatPtr(150)})

	price, _ = v.CurrentPrice()
	assert.Equal(t, 150.0, price)
}

func TestView_ClosedIsTerminal(t *testing.T) {
	v := newTestView(t)
	v.SetBaseline(openAuction(100), nil)

	v.ApplyAuctionUpdate(auction.Patch{ID: "a1", Status: statusPtr(auction.StatusClosed)})
	require.Equal(t, StateClosed, v.Snapshot().State)

	// Nothing reopens the view.
	v.ApplyAuctionUpdate(auction.Patch{ID: "a1", Status: statusPtr(auction.StatusOpen), CurrentPrice: floatPtr(999)})

	snap := v.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Equal(t, 100.0, snap.Auction.CurrentPrice)
	assert.False(t, v.BiddingOpen())
}

func TestView_BidsAndPriceMoveIndependently(t *testing.T) {
	v := newTestView(t)
	v.SetBaseline(openAuction(500), nil)

	v.ApplyNewBid("a1", auction.Bid{ID: "b1", AuctionID: "a1", Amount: 600, CreatedAt: baseTime})

	snap := v.Snapshot()
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, 600.0, snap.Bids[0].Amount)
	assert.Equal(t, 500.0, snap.Auction.CurrentPrice,
		"price only changes on auctionUpdated, not on newBid")
}

func TestView_NewBidPrependsNewestFirst(t *testing.T) {
	v := newTestView(t)
	v.SetBaseline(openAuction(100), []auction.Bid{{ID: "b1", Amount: 100, CreatedAt: baseTime}})

	v.ApplyNewBid("a1", auction.Bid{ID: "b2", Amount: 120, CreatedAt: baseTime.Add(time.Minute)})
	v.ApplyNewBid("a1", auction.Bid{ID: "b3", Amount: 140, CreatedAt: baseTime.Add(2 * time.Minute)})

	snap := v.Snapshot()
	require.Len(t, snap.Bids, 3)
	assert.Equal(t, []string{"b3", "b2", "b1"}, []string{snap.Bids[0].ID, snap.Bids[1].ID, snap.Bids[2].ID})
}

func TestView_EventsForOtherAuctionsIgnored(t *testing.T) {
	v := newTestView(t)
	v.SetBaseline(openAuction(100), nil)

	v.ApplyAuctionUpdate(auction.Patch{ID: "other", CurrentPrice: floatPtr(900)})
	v.ApplyNewBid("other", auction.Bid{ID: "b9", Amount: 900})

	snap := v.Snapshot()
	assert.Equal(t, 100.0, snap.Auction.CurrentPrice)
	assert.Empty(t, snap.Bids)
}

func TestView_PushBeforeBaselineIsBufferedAndReplayed(t *testing.T) {
	v := newTestView(t)

	// Push events win the race against the initial fetch.
	v.ApplyNewBid("a1", auction.Bid{ID: "b2", Amount: 130, CreatedAt: baseTime.Add(time.Minute)})
	v.ApplyAuctionUpdate(auction.Patch{ID: "a1", CurrentPrice: floatPtr(130)})

	_, ok := v.CurrentPrice()
	assert.False(t, ok, "price unknown while loading")

	v.SetBaseline(openAuction(100), []auction.Bid{{ID: "b1", Amount: 100, CreatedAt: baseTime}})

	snap := v.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Equal(t, 130.0, snap.Auction.CurrentPrice, "buffered update applied after baseline")
	require.Len(t, snap.Bids, 2)
	assert.Equal(t, "b2", snap.Bids[0].ID, "buffered bid replayed to the head")
}

func TestView_RefetchMergesInsteadOfOverwriting(t *testing.T) {
	v := newTestView(t)
	v.SetBaseline(openAuction(100), nil)
	v.ApplyAuctionUpdate(auction.Patch{ID: "a1", CurrentPrice: floatPtr(180)})

	// A slow second fetch resolves with an older price.
	v.SetBaseline(openAuction(150), []auction.Bid{{ID: "b1", Amount: 150, CreatedAt: baseTime}})

	snap := v.Snapshot()
	assert.Equal(t, 180.0, snap.Auction.CurrentPrice, "fetch must not roll the price back")
	assert.Len(t, snap.Bids, 1)
}

func TestView_MarkExpiredClosesAndComputesWinner(t *testing.T) {
	v := newTestView(t)
	a := openAuction(100)
	a.EndTime = baseTime
	v.SetBaseline(a, []auction.Bid{
		{ID: "b1", Amount: 300, CreatedAt: baseTime},
		{ID: "b2", Amount: 300, CreatedAt: baseTime.Add(-time.Minute)},
		{ID: "b3", Amount: 200, CreatedAt: baseTime.Add(time.Minute)},
	})

	v.MarkExpired()

	snap := v.Snapshot()
	require.Equal(t, StateClosed, snap.State)
	require.NotNil(t, snap.Winner)
	assert.Equal(t, "b2", snap.Winner.ID, "tie broken by earliest createdAt")

	// Expiry on an already closed view is a no-op.
	v.MarkExpired()
	assert.Equal(t, StateClosed, v.Snapshot().State)
}

func TestView_ExtendedDeadlineOutlivesStaleExpiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(baseTime)
	v := NewView("a1", clock, zerolog.Nop())

	a := openAuction(100)
	a.EndTime = baseTime.Add(time.Minute)
	v.SetBaseline(a, nil)

	// The server extends the deadline after the countdown was armed against
	// the original one.
	extended := baseTime.Add(time.Hour)
	v.ApplyAuctionUpdate(auction.Patch{ID: "a1", EndTime: &extended})

	// The stale countdown fires at the original deadline.
	clock.Advance(time.Minute)
	v.MarkExpired()
	assert.Equal(t, StateOpen, v.Snapshot().State,
		"expiry against a superseded deadline must not close the view")

	// Once the extended deadline really passes, expiry closes the view.
	clock.Advance(time.Hour)
	v.MarkExpired()
	assert.Equal(t, StateClosed, v.Snapshot().State)
}

func TestView_ClosedBaselineComputesWinnerImmediately(t *testing.T) {
	v := newTestView(t)

	closed := openAuction(100)
	closed.Status = auction.StatusClosed

	v.SetBaseline(closed, []auction.Bid{{ID: "b1", Amount: 250, CreatedAt: baseTime}})

	snap := v.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	require.NotNil(t, snap.Winner)
	assert.Equal(t, "b1", snap.Winner.ID)
}

func TestView_BaselineStatusDerivedFromEndTime(t *testing.T) {
	v := newTestView(t)

	expired := openAuction(100)
	expired.Status = ""
	expired.EndTime = baseTime.Add(-time.Minute)

	v.SetBaseline(expired, nil)

	assert.Equal(t, StateClosed, v.Snapshot().State)
}
