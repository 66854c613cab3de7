package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/TheRealCocky/Leilao-client/internal/api"
	"github.com/TheRealCocky/Leilao-client/internal/auction"
	"github.com/TheRealCocky/Leilao-client/internal/auctionview"
	"github.com/TheRealCocky/Leilao-client/internal/bidding"
	"github.com/TheRealCocky/Leilao-client/internal/session"
)

var errLoginRequired = errors.New("you are not logged in; run: leilao login")

func (a *app) currentSession() (*session.Session, error) {
	sess := a.store.Current()
	if sess == nil {
		return nil, errLoginRequired
	}
	return sess, nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	role := fs.String("role", "", "account role: BUYER or SELLER (default BUYER)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *password == "" {
		return errors.New("register requires -name, -email and -password")
	}

	user, err := a.client.Register(ctx, api.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     *role,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Account created for %s (%s). You can now log in.\n", user.Name, user.Email)
	return nil
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	token, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	sess, err := a.store.Establish(token)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Printf("Logged in as %s (%s)\n", sess.User.Email, sess.User.Role)
	return nil
}

func (a *app) runLogout(context.Context) error {
	a.store.Clear()
	fmt.Println("Logged out.")
	return nil
}

func (a *app) runMe(ctx context.Context) error {
	if _, err := a.currentSession(); err != nil {
		return err
	}
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> role=%s id=%s\n", user.Name, user.Email, user.Role, user.ID)
	return nil
}

func (a *app) runAuctions(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.listAuctions(ctx)
	}

	switch args[0] {
	case "list":
		return a.listAuctions(ctx)
	case "get":
		if len(args) < 2 {
			return errors.New("usage: leilao auctions get <id>")
		}
		return a.showAuction(ctx, args[1])
	case "create":
		return a.createAuction(ctx, args[1:])
	case "update":
		return a.updateAuction(ctx, args[1:])
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: leilao auctions delete <id>")
		}
		if err := a.client.DeleteAuction(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("Auction deleted.")
		return nil
	default:
		return fmt.Errorf("unknown auctions subcommand %q", args[0])
	}
}

func (a *app) listAuctions(ctx context.Context) error {
	auctions, err := a.client.ListAuctions(ctx)
	if err != nil {
		return err
	}
	if len(auctions) == 0 {
		fmt.Println("No auctions yet.")
		return nil
	}
	for _, item := range auctions {
		status := item.Status
		if status == "" {
			status = auction.StatusFromEnd(item.EndTime, a.clock.Now())
		}
		fmt.Printf("%-26s %-8s %10.2f  ends %s  %s\n",
			item.ID, status, item.CurrentPrice, formatTime(item.EndTime), item.Title)
	}
	return nil
}

func (a *app) showAuction(ctx context.Context, id string) error {
	item, err := a.client.GetAuction(ctx, id)
	if err != nil {
		return err
	}
	bids, err := a.client.BidsByAuction(ctx, id)
	if err != nil {
		return err
	}

	status := item.Status
	if status == "" {
		status = auction.StatusFromEnd(item.EndTime, a.clock.Now())
	}
	fmt.Printf("%s\n%s\n", item.Title, item.Description)
	fmt.Printf("status=%s  current=%.2f  starting=%.2f  ends=%s\n",
		status, item.CurrentPrice, item.StartingPrice, formatTime(item.EndTime))
	printBids(bids)
	if status == auction.StatusClosed {
		printWinner(auction.WinningBid(bids))
	}
	return nil
}

func (a *app) createAuction(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("auctions create", flag.ContinueOnError)
	title := fs.String("title", "", "auction title")
	description := fs.String("description", "", "auction description")
	startingPrice := fs.Float64("starting-price", 0, "starting price")
	endIn := fs.Duration("end-in", 24*time.Hour, "time until the auction closes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" || *startingPrice <= 0 {
		return errors.New("auctions create requires -title and a positive -starting-price")
	}
	if _, err := a.currentSession(); err != nil {
		return err
	}

	created, err := a.client.CreateAuction(ctx, api.CreateAuctionRequest{
		Title:         *title,
		Description:   *description,
		StartingPrice: *startingPrice,
		EndTime:       a.clock.Now().Add(*endIn),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Auction created: %s (%s)\n", created.Title, created.ID)
	return nil
}

func (a *app) updateAuction(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("auctions update", flag.ContinueOnError)
	id := fs.String("id", "", "auction id")
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("auctions update requires -id")
	}
	if _, err := a.currentSession(); err != nil {
		return err
	}

	var req api.UpdateAuctionRequest
	if *title != "" {
		req.Title = title
	}
	if *description != "" {
		req.Description = description
	}

	updated, err := a.client.UpdateAuction(ctx, *id, req)
	if err != nil {
		return err
	}
	fmt.Printf("Auction updated: %s\n", updated.Title)
	return nil
}

func (a *app) runBid(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: leilao bid <auction-id> <amount>")
	}
	auctionID := args[0]
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[1])
	}

	item, err := a.client.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	bids, err := a.client.BidsByAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	view := auctionview.NewView(auctionID, a.clock,
		a.log.With().Str("component", "auctionview").Logger())
	view.SetBaseline(*item, bids)

	coordinator := bidding.NewCoordinator(view, a.client, a.store,
		a.log.With().Str("component", "bidding").Logger())
	bid, err := coordinator.Submit(ctx, amount)
	if err != nil {
		return err
	}
	fmt.Printf("Bid of %.2f placed on %s.\n", bid.Amount, item.Title)
	return nil
}

func (a *app) runMyBids(ctx context.Context) error {
	sess, err := a.currentSession()
	if err != nil {
		return err
	}
	bids, err := a.client.BidsByUser(ctx, sess.User.ID)
	if err != nil {
		return err
	}
	if len(bids) == 0 {
		fmt.Println("You have not placed any bids.")
		return nil
	}
	printBids(bids)
	return nil
}

func (a *app) runMyAuctions(ctx context.Context) error {
	sess, err := a.currentSession()
	if err != nil {
		return err
	}
	auctions, err := a.client.ListAuctions(ctx)
	if err != nil {
		return err
	}

	mine := auctions[:0]
	for _, item := range auctions {
		if item.OwnerID == sess.User.ID {
			mine = append(mine, item)
		}
	}
	if len(mine) == 0 {
		fmt.Println("You do not own any auctions.")
		return nil
	}
	for _, item := range mine {
		fmt.Printf("%-26s %10.2f  ends %s  %s\n",
			item.ID, item.CurrentPrice, formatTime(item.EndTime), item.Title)
	}
	return nil
}

func (a *app) runNotifications(ctx context.Context, args []string) error {
	sess, err := a.currentSession()
	if err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "read" {
		if len(args) < 2 {
			return errors.New("usage: leilao notifications read <id>")
		}
		n, err := a.client.MarkNotificationRead(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Marked as read: %s\n", n.Message)
		return nil
	}

	notifications, err := a.client.NotificationsByUser(ctx, sess.User.ID)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	for _, n := range notifications {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s %-26s %s  %s\n", marker, n.ID, formatTime(n.CreatedAt), n.Message)
	}
	return nil
}

func printBids(bids []auction.Bid) {
	if len(bids) == 0 {
		fmt.Println("No bids yet.")
		return
	}
	fmt.Println("Recent bids:")
	for _, b := range bids {
		name := b.UserName
		if name == "" {
			name = "anonymous"
		}
		fmt.Printf("  %10.2f  %-20s %s\n", b.Amount, name, formatTime(b.CreatedAt))
	}
}

func printWinner(winner *auction.Bid) {
	if winner == nil {
		fmt.Println("Auction closed with no bids.")
		return
	}
	name := winner.UserName
	if name == "" {
		name = "unknown bidder"
	}
	fmt.Printf("Winner: %s with %.2f\n", name, winner.Amount)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
