package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"CryptoSim/internal/config"
	"CryptoSim/internal/engine"
	"CryptoSim/internal/feed"
	"CryptoSim/internal/model"
	"CryptoSim/internal/notifier"
	"CryptoSim/internal/store"
)

var commands = []subcommands.Command{
	&statusCmd{},
	&marketCmd{},
	&gainsCmd{},
	&tradesCmd{},
	&syncCmd{},
	&tradeCmd{side: model.SideBuy},
	&tradeCmd{side: model.SideSell},
	&resetCmd{},
}

var stdout io.Writer = os.Stdout

var plain = strings.NewReplacer("<b>", "", "</b>", "")

func printf(format string, args ...any) {
	fmt.Fprintf(stdout, format, args...)
}

// session is an engine opened on the configured store. Close releases the store.
type session struct {
	*engine.Engine
	store store.Store
}

func (s *session) Close() { s.store.Close() }

func openSession() (*session, error) {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.SQLitePath, cfg.Storage.Dir)
	if err != nil {
		return nil, err
	}
	client := feed.NewCoinbaseClient(cfg.Feed.SpotBaseURL, cfg.Feed.ExchangeBaseURL, cfg.Proxy, cfg.Feed.Timeout)
	eng, err := engine.New(client, st, engine.Options{
		Symbols:         cfg.Symbols,
		Sync:            cfg.SyncOptions(),
		StartingBalance: cfg.Portfolio.StartingBalance,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return &session{Engine: eng, store: st}, nil
}

// withSession opens a session, optionally syncs market data, and runs fn.
func withSession(ctx context.Context, sync bool, fn func(*session) error) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	if sync {
		if res := s.RunCycle(ctx); !res.Published {
			fmt.Fprintln(os.Stderr, "market sync did not complete")
			return subcommands.ExitFailure
		}
	}
	if err := fn(s); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type statusCmd struct{ offline bool }

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show cash, holdings and net worth" }
func (*statusCmd) Usage() string {
	return `simctl status [-offline]

  Syncs market data and prints the portfolio valuation. With -offline no
  prices are fetched and holdings are shown without value.
`
}
func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "skip the market sync")
}
func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, !c.offline, func(s *session) error {
		printf("%s\n", plain.Replace(notifier.FormatPortfolio(s.Summary(), s.Positions(), s.LastUpdated())))
		return nil
	})
}

type marketCmd struct{}

func (*marketCmd) Name() string             { return "market" }
func (*marketCmd) Synopsis() string         { return "fetch and show prices of the tracked assets" }
func (*marketCmd) Usage() string            { return "simctl market\n" }
func (*marketCmd) SetFlags(_ *flag.FlagSet) {}
func (*marketCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, true, func(s *session) error {
		printf("%s\n", plain.Replace(notifier.FormatMarket(s.Registry().Assets(), s.LastUpdated())))
		return nil
	})
}

type gainsCmd struct{}

func (*gainsCmd) Name() string             { return "gains" }
func (*gainsCmd) Synopsis() string         { return "show realized, unrealized and lookback gains" }
func (*gainsCmd) Usage() string            { return "simctl gains\n" }
func (*gainsCmd) SetFlags(_ *flag.FlagSet) {}
func (*gainsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, true, func(s *session) error {
		printf("%s\n", plain.Replace(notifier.FormatGains(s.Summary(), s.GainCards())))
		return nil
	})
}

type tradesCmd struct{ n int }

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "list trades, newest first" }
func (*tradesCmd) Usage() string    { return "simctl trades [-n <count>]\n" }
func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 20, "number of trades to show, 0 for all")
}
func (c *tradesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, false, func(s *session) error {
		printf("%s\n", plain.Replace(notifier.FormatTrades(s.Ledger().RecentTrades(c.n))))
		return nil
	})
}

type syncCmd struct{}

func (*syncCmd) Name() string             { return "sync" }
func (*syncCmd) Synopsis() string         { return "run one synchronization cycle and record today's snapshot" }
func (*syncCmd) Usage() string            { return "simctl sync\n" }
func (*syncCmd) SetFlags(_ *flag.FlagSet) {}
func (*syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, false, func(s *session) error {
		res := s.RunCycle(ctx)
		if !res.Published {
			return fmt.Errorf("cycle %d was not published", res.CycleID)
		}
		printf("cycle %d: %d updated, %d dropped %v\n", res.CycleID, len(res.Records), len(res.Dropped), res.Dropped)
		if snap, ok := s.History().Latest(); ok {
			printf("latest snapshot %s: %s\n", snap.Timestamp.Local().Format("2006-01-02 15:04"), notifier.USD(snap.Value))
		}
		return nil
	})
}

type tradeCmd struct {
	side model.Side
	max  bool
}

func (c *tradeCmd) Name() string { return string(c.side) }
func (c *tradeCmd) Synopsis() string {
	return fmt.Sprintf("%s an asset at the current market price", c.side)
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`simctl %[1]s SYMBOL USD
simctl %[1]s -max SYMBOL

  Fetches current prices, then executes a simulated market %[1]s.
`, c.side)
}
func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	if c.side == model.SideBuy {
		f.BoolVar(&c.max, "max", false, "spend the whole cash balance")
	} else {
		f.BoolVar(&c.max, "max", false, "sell the whole position")
	}
}
func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	want := 2
	if c.max {
		want = 1
	}
	if f.NArg() != want {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	symbol := strings.ToUpper(f.Arg(0))
	var usd float64
	if !c.max {
		v, err := strconv.ParseFloat(f.Arg(1), 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid amount %q\n", f.Arg(1))
			return subcommands.ExitUsageError
		}
		usd = v
	}

	return withSession(ctx, true, func(s *session) error {
		l := s.Ledger()
		var (
			trade model.Trade
			err   error
		)
		switch {
		case c.side == model.SideBuy && c.max:
			trade, err = l.BuyMax(symbol)
		case c.side == model.SideBuy:
			trade, err = l.Buy(symbol, usd)
		case c.max:
			trade, err = l.SellMax(symbol)
		default:
			trade, err = l.Sell(symbol, usd)
		}
		if err != nil {
			return fmt.Errorf("%s rejected: %w", c.side, err)
		}
		printf("%s\n", notifier.FormatTradeConfirmation(trade, l.Portfolio().Balance))
		return nil
	})
}

type resetCmd struct{ yes bool }

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "discard all trades and restore the starting balance" }
func (*resetCmd) Usage() string    { return "simctl reset -yes\n" }
func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "confirm the reset")
}
func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "refusing to reset without -yes")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, false, func(s *session) error {
		s.Ledger().Reset()
		log.Printf("[INFO] portfolio reset")
		printf("cash: %s\n", notifier.USD(s.Ledger().Portfolio().Balance))
		return nil
	})
}
