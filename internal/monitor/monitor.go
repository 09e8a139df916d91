// Package monitor runs the polling loop: fetch a quote snapshot per
// watched instrument, persist the sample, evaluate the alert rules,
// and fan the resulting summary out to every sink. One instrument
// failing never stops the cycle.
package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"stockwatch/config"
	"stockwatch/internal/alert"
	"stockwatch/internal/fetch"
	"stockwatch/internal/logger"
	"stockwatch/internal/markethours"
	"stockwatch/internal/metrics"
	"stockwatch/internal/model"
	"stockwatch/internal/notify"
	"stockwatch/internal/position"
	"stockwatch/internal/store/sqlite"
)

// volumeWindow is how many recent volume samples feed the volume-ratio
// indicator.
const volumeWindow = 5

// closedPollInterval is how often the loop re-checks the market state
// while trading is closed.
const closedPollInterval = time.Minute

// Store is the persistence surface the monitor needs.
type Store interface {
	Instruments() ([]model.Instrument, error)
	AppendSample(sample model.PriceSample) error
	PriceHistory(code string, limit int) ([]float64, error)
	VolumeHistory(code string, limit int) ([]float64, error)
	RecordAlert(a model.Alert, at time.Time) error
}

// Publisher mirrors summaries into Redis for other consumers. Optional.
type Publisher interface {
	SetLatest(ctx context.Context, s model.Summary) error
	PublishAlert(ctx context.Context, a model.Alert) error
}

// Broadcaster pushes summaries to live dashboard clients. Optional.
type Broadcaster interface {
	Broadcast(s *model.Summary)
}

// Evaluator turns one instrument's inputs into a summary with alerts.
type Evaluator interface {
	Evaluate(in alert.Input) model.Summary
}

// Options carries the optional collaborators and policy switches.
type Options struct {
	KLiner          fetch.KLiner // nil disables k-line backfill
	Publisher       Publisher
	Broadcaster     Broadcaster
	Metrics         *metrics.Metrics
	Health          *metrics.HealthStatus
	Positions       *position.Book
	MarketHoursOnly bool
	KLineBackfill   bool
}

// Monitor owns the polling loop.
type Monitor struct {
	store    Store
	quoter   fetch.Quoter
	eval     Evaluator
	notifier notify.Notifier
	runtime  *config.Runtime
	logger   *slog.Logger
	opts     Options

	running atomic.Bool
	now     func() time.Time
}

// New creates a Monitor. Optional collaborators in opts may be nil.
func New(store Store, quoter fetch.Quoter, eval Evaluator, notifier notify.Notifier,
	rt *config.Runtime, log *slog.Logger, opts Options) *Monitor {
	if opts.Positions == nil {
		opts.Positions = position.Empty()
	}
	return &Monitor{
		store:    store,
		quoter:   quoter,
		eval:     eval,
		notifier: notifier,
		runtime:  rt,
		logger:   log,
		opts:     opts,
		now:      time.Now,
	}
}

// Running reports whether the loop is active; feeds the status command.
func (m *Monitor) Running() bool {
	return m.running.Load()
}

// RunLoop polls until ctx is cancelled. The interval is re-read from
// the runtime settings every cycle so interval commands take effect on
// the next tick.
func (m *Monitor) RunLoop(ctx context.Context) {
	m.running.Store(true)
	defer m.running.Store(false)

	m.logger.Info("monitor loop started")
	for {
		wait := m.runtime.Snapshot().Interval

		if m.opts.MarketHoursOnly && !markethours.IsMarketOpen(m.now()) {
			m.logger.Info("market closed, idling",
				slog.String("status", markethours.StatusString(m.now())))
			wait = closedPollInterval
			if until := markethours.TimeUntilOpen(m.now()); until < wait {
				wait = until
			}
		} else {
			m.CheckAll(ctx)
		}

		select {
		case <-ctx.Done():
			m.logger.Info("monitor loop stopped")
			return
		case <-time.After(wait):
		}
	}
}

// RunOnce executes a single cycle; used by the --once flag.
func (m *Monitor) RunOnce(ctx context.Context) {
	m.running.Store(true)
	defer m.running.Store(false)
	m.CheckAll(ctx)
}

// CheckAll runs one full cycle over the watchlist.
func (m *Monitor) CheckAll(ctx context.Context) {
	start := m.now()
	ctx = logger.WithCycleID(ctx, logger.NewCycleID(start))
	settings := m.runtime.Snapshot()

	insts, err := m.store.Instruments()
	if err != nil {
		m.logger.Error("list instruments failed", slog.String("error", err.Error()))
		return
	}
	if m.opts.Metrics != nil {
		m.opts.Metrics.InstrumentsWatched.Set(float64(len(insts)))
	}
	if len(insts) == 0 {
		m.logger.Info("watchlist empty, waiting for add commands")
		return
	}

	m.logger.Info("cycle start", append(logger.WithCycle(ctx),
		slog.Int("instruments", len(insts)))...)

	for _, inst := range insts {
		if ctx.Err() != nil {
			return
		}
		m.checkOne(ctx, inst, settings)
	}

	if m.opts.Metrics != nil {
		m.opts.Metrics.CyclesTotal.Inc()
		m.opts.Metrics.CycleDur.Observe(m.now().Sub(start).Seconds())
	}
	if m.opts.Health != nil {
		m.opts.Health.SetLastCycleTime(m.now())
	}
}

func (m *Monitor) checkOne(ctx context.Context, inst model.Instrument, settings config.Settings) {
	q, err := m.quoter.Quote(ctx, inst.Code)
	if err != nil {
		m.countFetchError()
		m.logger.Warn("quote fetch failed",
			slog.String("code", inst.Code), slog.String("error", err.Error()))
		return
	}
	if q.Price == 0 {
		m.countFetchError()
		m.logger.Warn("quote has zero price, skipping", slog.String("code", inst.Code))
		return
	}
	if m.opts.Metrics != nil {
		m.opts.Metrics.QuotesFetched.Inc()
	}

	sample := model.PriceSample{
		Code:      inst.Code,
		Price:     q.Price,
		Volume:    q.Volume,
		Timestamp: m.now(),
	}
	if err := m.store.AppendSample(sample); err != nil {
		m.logger.Error("append sample failed",
			slog.String("code", inst.Code), slog.String("error", err.Error()))
		return
	}

	prices, err := m.store.PriceHistory(inst.Code, sqlite.HistoryCap)
	if err != nil {
		m.logger.Error("price history failed",
			slog.String("code", inst.Code), slog.String("error", err.Error()))
		return
	}
	volumes, err := m.store.VolumeHistory(inst.Code, volumeWindow)
	if err != nil {
		m.logger.Error("volume history failed",
			slog.String("code", inst.Code), slog.String("error", err.Error()))
		return
	}

	prices = m.backfill(ctx, inst.Code, prices)

	sum := m.eval.Evaluate(alert.Input{
		Quote:    q,
		Prices:   prices,
		Volumes:  volumes,
		Position: m.opts.Positions.Get(inst.Code),
		Settings: settings,
	})

	for _, a := range sum.Alerts {
		if err := m.store.RecordAlert(a, sum.At); err != nil {
			m.logger.Error("record alert failed",
				slog.String("code", a.Code), slog.String("error", err.Error()))
		}
		if m.opts.Metrics != nil {
			m.opts.Metrics.AlertsTotal.WithLabelValues(string(a.Kind)).Inc()
		}
		if m.opts.Publisher != nil {
			if err := m.opts.Publisher.PublishAlert(ctx, a); err != nil {
				m.logger.Warn("publish alert failed", slog.String("error", err.Error()))
			}
		}
	}
	if sum.Alerted() {
		m.logger.Info("alerts raised", append(logger.WithCycle(ctx),
			slog.String("code", inst.Code), slog.Int("count", len(sum.Alerts)))...)
	}

	if m.opts.Publisher != nil {
		if err := m.opts.Publisher.SetLatest(ctx, sum); err != nil {
			m.logger.Warn("cache summary failed", slog.String("error", err.Error()))
		}
	}
	if m.opts.Broadcaster != nil {
		m.opts.Broadcaster.Broadcast(&sum)
	}

	if sum.Alerted() || settings.NotifyAlways {
		card := notify.Card{
			Title: alert.CardTitle(&sum),
			Color: alert.CardColor(&sum),
			Body:  alert.CardBody(&sum),
		}
		if err := m.notifier.SendCard(ctx, card); err != nil {
			if m.opts.Metrics != nil {
				m.opts.Metrics.NotifyErrors.Inc()
			}
			m.logger.Error("notify failed",
				slog.String("code", inst.Code), slog.String("error", err.Error()))
		}
	}
}

// backfill pads a shallow live history with daily k-line closes so the
// full rule set activates before 30 polling samples have accumulated.
// K-line closes go first: the live samples stay the newest points.
func (m *Monitor) backfill(ctx context.Context, code string, prices []float64) []float64 {
	if !m.opts.KLineBackfill || m.opts.KLiner == nil || len(prices) >= alert.MinFullDepth {
		return prices
	}

	need := alert.MinFullDepth - len(prices) + alert.MinBasicDepth
	klines, err := m.opts.KLiner.DailyKLines(ctx, code, need)
	if err != nil {
		m.logger.Warn("kline backfill failed",
			slog.String("code", code), slog.String("error", err.Error()))
		return prices
	}

	closes := make([]float64, 0, len(klines)+len(prices))
	for _, k := range klines {
		closes = append(closes, k.Close)
	}
	return append(closes, prices...)
}

func (m *Monitor) countFetchError() {
	if m.opts.Metrics != nil {
		m.opts.Metrics.FetchErrors.Inc()
	}
}
