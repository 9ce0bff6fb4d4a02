package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"CryptoSim/internal/engine"
	"CryptoSim/internal/ledger"
	"CryptoSim/internal/model"
	"CryptoSim/internal/notifier"
)

// Scheduler runs synchronization cycles and reports on cron schedules.
type Scheduler struct {
	Cron         *cron.Cron
	Engine       *engine.Engine
	Notifier     notifier.Notifier
	Ctx          context.Context
	CycleTimeout time.Duration
}

// NewScheduler creates a Scheduler. A cycle still running when the next one is
// due causes that run to be skipped.
func NewScheduler(ctx context.Context, eng *engine.Engine, n notifier.Notifier) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Engine:       eng,
		Notifier:     n,
		Ctx:          ctx,
		CycleTimeout: 2 * time.Minute,
	}
}

// RegisterAll registers the synchronization cycle and the portfolio report.
func (s *Scheduler) RegisterAll(cycleCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(cycleCron, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunCycleNow executes one synchronization cycle immediately.
func (s *Scheduler) RunCycleNow() {
	s.cycleTask()
}

func (s *Scheduler) cycleTask() {
	ctx, cancel := context.WithTimeout(s.Ctx, s.CycleTimeout)
	defer cancel()

	res := s.Engine.RunCycle(ctx)
	if len(res.Dropped) > 0 {
		log.Printf("[WARN] cycle %d dropped %s", res.CycleID, strings.Join(res.Dropped, ","))
	}
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running portfolio report")
	s.trySend(s.portfolioReport() + "\n\n" + notifier.FormatGains(s.Engine.Summary(), s.Engine.GainCards()))
}

func (s *Scheduler) portfolioReport() string {
	return notifier.FormatPortfolio(s.Engine.Summary(), s.Engine.Positions(), s.Engine.LastUpdated())
}

const help = "Commands:\n" +
	"• /portfolio\n" +
	"• /market\n" +
	"• /gains\n" +
	"• /trades [n]\n" +
	"• /buy SYMBOL USD\n" +
	"• /sell SYMBOL USD\n" +
	"• /buymax SYMBOL\n" +
	"• /sellmax SYMBOL\n" +
	"• /sync"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i] // "/portfolio@SimBot"
	}
	args := fields[1:]

	switch name {
	case "/portfolio":
		return s.portfolioReport()
	case "/market":
		return notifier.FormatMarket(s.Engine.Registry().Assets(), s.Engine.LastUpdated())
	case "/gains":
		return notifier.FormatGains(s.Engine.Summary(), s.Engine.GainCards())
	case "/trades":
		n := 10
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
				n = v
			}
		}
		return notifier.FormatTrades(s.Engine.Ledger().RecentTrades(n))
	case "/buy", "/sell":
		if len(args) != 2 {
			return fmt.Sprintf("Usage: %s SYMBOL USD", name)
		}
		usd, err := strconv.ParseFloat(strings.TrimPrefix(args[1], "$"), 64)
		if err != nil {
			return fmt.Sprintf("Invalid amount %q", args[1])
		}
		symbol := strings.ToUpper(args[0])
		if name == "/buy" {
			return s.tradeReply(s.Engine.Ledger().Buy(symbol, usd))
		}
		return s.tradeReply(s.Engine.Ledger().Sell(symbol, usd))
	case "/buymax", "/sellmax":
		if len(args) != 1 {
			return fmt.Sprintf("Usage: %s SYMBOL", name)
		}
		symbol := strings.ToUpper(args[0])
		if name == "/buymax" {
			return s.tradeReply(s.Engine.Ledger().BuyMax(symbol))
		}
		return s.tradeReply(s.Engine.Ledger().SellMax(symbol))
	case "/sync":
		cctx, cancel := context.WithTimeout(ctx, s.CycleTimeout)
		defer cancel()
		res := s.Engine.RunCycle(cctx)
		if !res.Published {
			return "⚠️ Sync did not complete, previous market data kept."
		}
		return fmt.Sprintf("🔄 Synced %d assets.\n\n%s", len(res.Records),
			notifier.FormatMarket(s.Engine.Registry().Assets(), s.Engine.LastUpdated()))
	default:
		return help
	}
}

func (s *Scheduler) tradeReply(trade model.Trade, err error) string {
	if err != nil {
		return "❌ " + rejection(err)
	}
	return notifier.FormatTradeConfirmation(trade, s.Engine.Ledger().Portfolio().Balance)
}

func rejection(err error) string {
	switch {
	case errors.Is(err, ledger.ErrNoPrice):
		return "No price yet for that asset, try /sync."
	case errors.Is(err, ledger.ErrInsufficientCash):
		return "Not enough cash."
	case errors.Is(err, ledger.ErrInsufficientHoldings):
		return "Not enough holdings."
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "Amount must be positive."
	default:
		return err.Error()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
