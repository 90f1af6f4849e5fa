package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"go-deribit-gateway/internal/config"
	"go-deribit-gateway/internal/deribit"
	"go-deribit-gateway/internal/infrastructure/hub"
	"go-deribit-gateway/internal/infrastructure/logger"
	"go-deribit-gateway/internal/infrastructure/server"
	"go-deribit-gateway/internal/streaming"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// Credentials come from the environment, optionally via a .env file.
	_ = godotenv.Load()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogrusLogger(cfg.Logger)
	ctx := context.Background()
	sctx := WithSignal(ctx)

	clientID := os.Getenv("DERIBIT_CLIENT_ID")
	clientSecret := os.Getenv("DERIBIT_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Fatal("DERIBIT_CLIENT_ID and DERIBIT_CLIENT_SECRET must be set")
	}

	// No token, no further operation: an authentication failure is fatal.
	rpc := deribit.NewClient(cfg.Deribit.BaseURL, log)
	if _, err := rpc.Authenticate(sctx, clientID, clientSecret); err != nil {
		log.Fatalf("authentication failed: %v", err)
	}

	if summary, err := rpc.GetAccountSummary(sctx, "BTC"); err != nil {
		log.Warnf("account summary unavailable: %v", err)
	} else {
		log.Infof("account equity: %.8f %s", summary.Equity, summary.Currency)
	}
	if book, err := rpc.GetOrderBook(sctx, cfg.Subscription.Instrument); err != nil {
		log.Warnf("order book snapshot unavailable: %v", err)
	} else {
		log.Infof("%s best bid/ask: %.2f / %.2f",
			book.InstrumentName, book.BestBidPrice, book.BestAskPrice)
	}

	hubInstance := hub.New(log)
	if err := hubInstance.Start(ctx); err != nil {
		log.Fatalf("failed to start hub: %v", err)
	}

	router := InitRouter(hubInstance, log)
	httpSrv := server.NewHTTPServer(cfg.Hub.Addr, router)

	client := streaming.NewClient(cfg.Streaming.ToStreaming(), log)
	pump := streaming.NewPump(client, cfg.Subscription.Topic(), hubInstance.Broadcast, log)

	app := newApplication(log, httpSrv, hubInstance, pump)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

type Application struct {
	logger  logger.Logger
	httpSrv server.Server
	hub     *hub.Hub
	pump    *streaming.Pump
}

func newApplication(
	log logger.Logger,
	httpSrv *server.HTTPServer,
	hubInstance *hub.Hub,
	pump *streaming.Pump,
) *Application {
	return &Application{
		logger:  log.WithField("app", "deribit-gateway"),
		httpSrv: httpSrv,
		hub:     hubInstance,
		pump:    pump,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg := errgroup.Group{}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		// A streaming failure is reported but must not take the process
		// down; the synchronous endpoints stay usable.
		if err := app.pump.Run(ctx); err != nil {
			app.logger.Errorf("streaming pump stopped: %v", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()

		app.pump.Stop()
		<-app.pump.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer cancel()

		if err := app.hub.Stop(shutdownCtx); err != nil {
			app.logger.Errorf("failed to stop hub: %v", err)
		}

		return app.httpSrv.Stop(shutdownCtx)
	})

	return eg.Wait()
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
