// Command leilao is a terminal front-end for the Leilao auction
// marketplace: register and log in, browse and create auctions, place bids,
// and watch an auction live with countdown and push updates.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/TheRealCocky/Leilao-client/internal/api"
	"github.com/TheRealCocky/Leilao-client/internal/session"
)

const usage = `Usage: leilao [-config file] <command> [args]

Commands:
  register                create an account
  login                   log in and store the session
  logout                  forget the stored session
  me                      show the authenticated user
  auctions                list, get, create, update or delete auctions
  bid <auction-id> <amt>  place a bid
  my-bids                 list your bids
  my-auctions             list auctions you own
  watch <auction-id>      follow an auction live
  notifications           list notifications, mark them read
`

// app carries the shared dependencies into command handlers.
type app struct {
	cfg    *Config
	log    zerolog.Logger
	store  *session.Store
	client *api.Client
	clock  clockwork.Clock
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	store := session.NewStore(cfg.SessionFile, log.With().Str("component", "session").Logger())
	if err := store.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load stored session")
	}

	client := api.NewClient(cfg.APIURL,
		api.WithTokenSource(store),
		api.WithLogger(log.With().Str("component", "api").Logger()),
		api.WithUnauthorizedHook(func() {
			store.Clear()
			fmt.Fprintln(os.Stderr, "Session expired. Please log in again.")
		}),
	)

	a := &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		client: client,
		clock:  clockwork.NewRealClock(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.runRegister(ctx, args)
	case "login":
		return a.runLogin(ctx, args)
	case "logout":
		return a.runLogout(ctx)
	case "me":
		return a.runMe(ctx)
	case "auctions":
		return a.runAuctions(ctx, args)
	case "bid":
		return a.runBid(ctx, args)
	case "my-bids":
		return a.runMyBids(ctx)
	case "my-auctions":
		return a.runMyAuctions(ctx)
	case "watch":
		return a.runWatch(ctx, args)
	case "notifications":
		return a.runNotifications(ctx, args)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

// renderError turns a failure into one human-readable line. Backend domain
// messages pass through verbatim; transport failures get a generic line.
func renderError(err error) string {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.UserMessage()
	}
	if api.IsTransport(err) {
		return fmt.Sprintf("Could not reach the server (%v). Please try again.", err)
	}
	return err.Error()
}

func asAPIError(err error) (*api.Error, bool) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
