package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stockwatch/config"
	"stockwatch/internal/alert"
	"stockwatch/internal/command"
	"stockwatch/internal/cooldown"
	"stockwatch/internal/fetch"
	"stockwatch/internal/gateway"
	"stockwatch/internal/logger"
	"stockwatch/internal/metrics"
	"stockwatch/internal/model"
	"stockwatch/internal/monitor"
	"stockwatch/internal/notify"
	"stockwatch/internal/position"
	redisstore "stockwatch/internal/store/redis"
	sqlitestore "stockwatch/internal/store/sqlite"
	"stockwatch/internal/webhook"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	once := flag.Bool("once", false, "run a single monitoring cycle and exit")
	flag.Parse()

	log.Println("[monitor] starting...")

	cfg := config.Load()
	slogger := logger.Init("stockwatch", slog.LevelInfo)
	rt := config.NewRuntime(config.InitialSettings())

	// ---- Graceful shutdown context ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- SQLite store ----
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	store, err := sqlitestore.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[monitor] sqlite init failed: %v", err)
	}
	defer store.Close()
	log.Println("[monitor] sqlite store ready")

	// ---- Redis hot layer (optional) ----
	var pub *redisstore.Publisher
	if cfg.RedisAddr != "" {
		pub, err = redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Printf("[monitor] WARNING: redis init failed: %v (continuing without redis)", err)
			pub = nil
		} else {
			defer pub.Close()
			log.Println("[monitor] redis publisher ready")
		}
	}

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus(cfg.RedisAddr != "")
	health.CheckSQLite(ctx, store.DB())
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	if pub != nil {
		health.StartLivenessChecker(ctx, pub.Client(), store.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, store.DB(), 10*time.Second)
	}

	// ---- Quote fetcher + watchlist seeding ----
	fetcher := fetch.NewClient()
	seedWatchlist(ctx, store, fetcher, cfg.ParseStockList())

	// ---- Position book ----
	book := position.Empty()
	if cfg.PositionsPath != "" {
		book, err = position.Load(cfg.PositionsPath)
		if err != nil {
			log.Fatalf("[monitor] position book load failed: %v", err)
		}
		log.Printf("[monitor] loaded %d positions", book.Len())
	}

	// ---- Notifier ----
	notifier := notify.NewFeishuNotifier(cfg.FeishuWebhook, cfg.FeishuAppID, cfg.FeishuAppSecret)

	// ---- Alert pipeline ----
	gate := cooldown.New(cooldown.DefaultWindow)
	gate.OnDeny(prom.AlertsSuppressed.Inc)
	eval := alert.New(gate)

	// ---- WS gateway ----
	hub := gateway.NewHub()
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				prom.WSClients.Set(float64(hub.ClientCount()))
			}
		}
	}()

	// ---- Monitor ----
	var klinerOpt fetch.KLiner
	if cfg.KLineBackfill {
		klinerOpt = fetcher
	}
	var pubOpt monitor.Publisher
	if pub != nil {
		pubOpt = pub
	}
	mon := monitor.New(store, fetcher, eval, notifier, rt, slogger, monitor.Options{
		KLiner:          klinerOpt,
		Publisher:       pubOpt,
		Broadcaster:     hub,
		Metrics:         prom,
		Health:          health,
		Positions:       book,
		MarketHoursOnly: cfg.MarketHoursOnly,
		KLineBackfill:   cfg.KLineBackfill,
	})

	if *once {
		log.Println("[monitor] --once: running a single cycle")
		mon.RunOnce(ctx)
		return
	}

	// ---- Event callback + WS server ----
	cmds := command.New(store, fetcher, rt, mon.Running)
	events := webhook.NewHandler(cmds, notifier, cfg.FeishuVerifyToken, slogger)

	mux := http.NewServeMux()
	mux.Handle("/feishu/events", events)
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		log.Printf("[monitor] event server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[monitor] event server error: %v", err)
		}
	}()

	sendStartupCard(ctx, notifier, store, rt)

	go mon.RunLoop(ctx)

	<-sigCh
	log.Println("[monitor] shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	log.Println("[monitor] bye")
}

// seedWatchlist adds STOCK_LIST codes that are not yet stored, fetching
// each name once. A code that cannot be resolved is skipped, not fatal.
func seedWatchlist(ctx context.Context, store *sqlitestore.Store, fetcher *fetch.Client, codes []string) {
	for _, raw := range codes {
		code := fetch.NormalizeCode(raw)
		known, err := store.HasInstrument(code)
		if err != nil {
			log.Printf("[monitor] seed %s: %v", code, err)
			continue
		}
		if known {
			continue
		}
		q, err := fetcher.Quote(ctx, code)
		if err != nil {
			log.Printf("[monitor] seed %s: quote failed: %v", code, err)
			continue
		}
		if err := store.AddInstrument(model.Instrument{Code: code, Name: q.Name, AddedAt: time.Now()}); err != nil {
			log.Printf("[monitor] seed %s: %v", code, err)
			continue
		}
		log.Printf("[monitor] watching %s (%s)", q.Name, code)
	}
}

// sendStartupCard announces the bot and its watchlist to the channel.
func sendStartupCard(ctx context.Context, notifier notify.Notifier, store *sqlitestore.Store, rt *config.Runtime) {
	insts, err := store.Instruments()
	if err != nil {
		log.Printf("[monitor] startup card: %v", err)
		return
	}
	s := rt.Snapshot()

	body := fmt.Sprintf("✅ 监控服务已启动\n\n📈 监控股票: %d只\n🔄 检查间隔: %d秒\n\n发送 @我 help 查看命令",
		len(insts), int(s.Interval/time.Second))
	card := notify.Card{Title: "【股票监控机器人】", Color: "blue", Body: body}
	if err := notifier.SendCard(ctx, card); err != nil {
		log.Printf("[monitor] startup card failed: %v", err)
	}
}
