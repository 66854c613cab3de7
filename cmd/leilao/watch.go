package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/TheRealCocky/Leilao-client/internal/auctionview"
	"github.com/TheRealCocky/Leilao-client/internal/countdown"
	"github.com/TheRealCocky/Leilao-client/internal/notify"
	"github.com/TheRealCocky/Leilao-client/internal/realtime"
)

// runWatch follows one auction live: the REST baseline is merged with push
// events while the countdown drives the open/closed transition.
func (a *app) runWatch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: leilao watch <auction-id>")
	}
	auctionID := args[0]

	view := auctionview.NewView(auctionID, a.clock,
		a.log.With().Str("component", "auctionview").Logger())
	reconciler := notify.NewReconciler(
		a.log.With().Str("component", "notify").Logger())

	channel := realtime.NewChannel(realtime.DefaultConfig(a.cfg.SocketURL),
		a.log.With().Str("component", "realtime").Logger())
	defer channel.Close()

	// Subscribe before fetching so events that race the fetch are buffered
	// by the view instead of lost.
	unsubscribe := channel.Subscribe(realtime.Handler{
		AuctionUpdated: view.ApplyAuctionUpdate,
		NewBid:         view.ApplyNewBid,
		Notification: func(n notify.Notification) {
			reconciler.AddPushed(n)
			fmt.Printf("\n[notification] %s\n", n.Message)
		},
	})
	defer unsubscribe()

	if sess := a.store.Current(); sess != nil {
		if err := channel.Join(sess.User.ID); err != nil {
			a.log.Warn().Err(err).Msg("push channel unavailable, showing fetched state only")
		} else if history, err := a.client.NotificationsByUser(ctx, sess.User.ID); err == nil {
			reconciler.SetFetched(history)
		}
	} else if err := channel.Connect(); err != nil {
		a.log.Warn().Err(err).Msg("push channel unavailable, showing fetched state only")
	}

	item, err := a.client.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	bids, err := a.client.BidsByAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	view.SetBaseline(*item, bids)

	fmt.Printf("Watching %q — press Ctrl-C to stop.\n", item.Title)
	if unread := reconciler.Unread(); unread > 0 {
		fmt.Printf("You have %d unread notification(s).\n", unread)
	}

	ticker := countdown.NewTicker(a.clock)
	target := item.EndTime
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer func() { cancelWatch() }()
	remaining := ticker.Watch(watchCtx, target)

	var last watchState
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped watching.")
			return nil
		case r, ok := <-remaining:
			if !ok {
				return nil
			}
			// A pushed update may have moved the deadline; re-arm the
			// countdown against the merged EndTime before acting on expiry.
			snap := view.Snapshot()
			if !snap.Auction.EndTime.IsZero() && !snap.Auction.EndTime.Equal(target) {
				target = snap.Auction.EndTime
				cancelWatch()
				newCtx, newCancel := context.WithCancel(ctx)
				watchCtx, cancelWatch = newCtx, newCancel
				remaining = ticker.Watch(watchCtx, target)
				r = countdown.Until(target, a.clock.Now())
			}
			if r.Expired {
				view.MarkExpired()
				snap = view.Snapshot()
			}
			a.renderWatch(snap, r, &last)
			if last.closed {
				return nil
			}
		}
	}
}

// watchState tracks what was last rendered so only changes are printed.
type watchState struct {
	price    float64
	bidCount int
	closed   bool
	started  bool
}

func (a *app) renderWatch(snap auctionview.Snapshot, r countdown.Remaining, last *watchState) {
	if snap.State == auctionview.StateClosed {
		if !last.closed {
			fmt.Println("\nAuction closed.")
			printWinner(snap.Winner)
			last.closed = true
		}
		return
	}

	if !last.started || snap.Auction.CurrentPrice != last.price || len(snap.Bids) != last.bidCount {
		if last.started && len(snap.Bids) > last.bidCount {
			top := snap.Bids[0]
			name := top.UserName
			if name == "" {
				name = "anonymous"
			}
			fmt.Printf("\nNew bid: %.2f by %s\n", top.Amount, name)
		}
		last.price = snap.Auction.CurrentPrice
		last.bidCount = len(snap.Bids)
		last.started = true
	}

	fmt.Printf("\rcurrent %.2f | %d bid(s) | %02dh %02dm %02ds remaining ",
		snap.Auction.CurrentPrice, len(snap.Bids), r.Hours, r.Minutes, r.Seconds)
}
