package synchronizer

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"CryptoSim/internal/feed"
	"CryptoSim/internal/model"
)

// Options tunes a synchronization cycle.
type Options struct {
	Stagger      time.Duration // delay × symbol index before the first spot request
	RetryBackoff time.Duration // wait before the single spot retry
	CallTimeout  time.Duration // bound on every feed call, 0 for none
	MaxLanes     int           // concurrent symbol lanes, 0 for one per symbol
	SeriesLength int           // chart points kept per horizon, 0 for all
	Granularity  map[model.Horizon]int
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		Stagger:      150 * time.Millisecond,
		RetryBackoff: time.Second,
		CallTimeout:  10 * time.Second,
		SeriesLength: 100,
		Granularity: map[model.Horizon]int{
			model.HorizonShort:  300,
			model.HorizonMedium: 3600,
			model.HorizonLong:   86400,
		},
	}
}

// Publisher receives the joined batch of a cycle.
type Publisher interface {
	Publish(cycleID uint64, batch []model.AssetRecord, at time.Time) bool
}

// Result describes one completed cycle.
type Result struct {
	CycleID     uint64
	Records     []model.AssetRecord // in tracked-symbol order
	Dropped     []string
	CompletedAt time.Time
	Published   bool // false when cancelled or superseded by a newer cycle
}

// Synchronizer refreshes every tracked symbol from the feed and publishes the
// joined result as one batch.
type Synchronizer struct {
	client  feed.Client
	target  Publisher
	symbols []model.TrackedSymbol
	opts    Options
	cycles  atomic.Uint64
	now     func() time.Time
}

func New(client feed.Client, target Publisher, symbols []model.TrackedSymbol, opts Options) *Synchronizer {
	if opts.Granularity == nil {
		opts.Granularity = DefaultOptions().Granularity
	}
	return &Synchronizer{
		client:  client,
		target:  target,
		symbols: append([]model.TrackedSymbol(nil), symbols...),
		opts:    opts,
		now:     time.Now,
	}
}

// Symbols returns the tracked symbols.
func (s *Synchronizer) Symbols() []model.TrackedSymbol {
	return append([]model.TrackedSymbol(nil), s.symbols...)
}

// Run executes one cycle. It returns only after every lane has resolved, and
// publishes nothing if ctx was cancelled before then.
func (s *Synchronizer) Run(ctx context.Context) Result {
	id := s.cycles.Add(1)
	start := s.now()
	begin := time.Now()

	slots := make([]*model.AssetRecord, len(s.symbols))
	var g errgroup.Group
	lanes := s.opts.MaxLanes
	if lanes <= 0 {
		lanes = len(s.symbols)
	}
	if lanes > 0 {
		g.SetLimit(lanes)
	}
	for i, sym := range s.symbols {
		i, sym := i, sym
		g.Go(func() error {
			slots[i] = s.lane(ctx, id, begin.Add(s.opts.Stagger*time.Duration(i)), sym)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{CycleID: id, CompletedAt: s.now()}
	for i, rec := range slots {
		if rec == nil {
			res.Dropped = append(res.Dropped, s.symbols[i].Symbol)
			continue
		}
		res.Records = append(res.Records, *rec)
	}

	if ctx.Err() != nil {
		log.Printf("[WARN] cycle %d cancelled after %v, nothing published", id, res.CompletedAt.Sub(start))
		return res
	}
	res.Published = s.target.Publish(id, res.Records, res.CompletedAt)
	if !res.Published {
		log.Printf("[WARN] cycle %d superseded by a newer cycle, batch discarded", id)
		return res
	}
	log.Printf("[INFO] cycle %d published %d/%d assets in %v", id, len(res.Records), len(s.symbols), res.CompletedAt.Sub(start))
	return res
}

// lane resolves one symbol, issuing its first spot request no earlier than
// notBefore. A nil record means the symbol is dropped this cycle.
func (s *Synchronizer) lane(ctx context.Context, cycle uint64, notBefore time.Time, sym model.TrackedSymbol) *model.AssetRecord {
	if !sleep(ctx, time.Until(notBefore)) {
		return nil
	}

	price, err := s.spot(ctx, sym.Symbol)
	if err != nil {
		log.Printf("[WARN] cycle %d: spot %s failed, retrying in %v: %v", cycle, sym.Symbol, s.opts.RetryBackoff, err)
		if !sleep(ctx, s.opts.RetryBackoff) {
			return nil
		}
		price, err = s.spot(ctx, sym.Symbol)
		if err != nil {
			log.Printf("[WARN] cycle %d: spot %s failed again, dropping: %v", cycle, sym.Symbol, err)
			return nil
		}
	}

	return &model.AssetRecord{
		Symbol:    sym.Symbol,
		Name:      sym.Name,
		LogoURL:   sym.LogoURL,
		Price:     price,
		Charts:    s.charts(ctx, cycle, sym.Symbol),
		Flash:     uuid.NewString(),
		UpdatedAt: s.now(),
	}
}

func (s *Synchronizer) spot(ctx context.Context, symbol string) (float64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.client.SpotPrice(ctx, symbol)
}

// charts fetches every horizon concurrently. A failed horizon is left nil.
func (s *Synchronizer) charts(ctx context.Context, cycle uint64, symbol string) map[model.Horizon][]float64 {
	series := make([][]float64, len(model.Horizons))
	var g errgroup.Group
	for i, h := range model.Horizons {
		i, h := i, h
		g.Go(func() error {
			cctx, cancel := s.bound(ctx)
			defer cancel()
			closes, err := s.client.HistoricalCloses(cctx, symbol, s.opts.Granularity[h])
			if err != nil {
				log.Printf("[WARN] cycle %d: %s %s chart unavailable: %v", cycle, symbol, h, err)
				return nil
			}
			series[i] = trim(closes, s.opts.SeriesLength)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[model.Horizon][]float64, len(model.Horizons))
	for i, h := range model.Horizons {
		out[h] = series[i]
	}
	return out
}

func (s *Synchronizer) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.CallTimeout)
}

func trim(series []float64, n int) []float64 {
	if n > 0 && len(series) > n {
		series = series[len(series)-n:]
	}
	return append(make([]float64, 0, len(series)), series...)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
