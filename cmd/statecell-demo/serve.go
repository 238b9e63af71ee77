package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/statecell-dev/statecell/pkg/feed"
	"github.com/statecell-dev/statecell/pkg/middleware"
	"github.com/statecell-dev/statecell/pkg/runloop"
	"github.com/statecell-dev/statecell/pkg/statecell"
	"github.com/statecell-dev/statecell/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		addr      string
		namespace string
		anyOrigin bool
		tick      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the shared-counter server",
		Long: `Start the demo server.

Routes:
  /         counter page
  /ws       WebSocket feed of the counter cell
  /metrics  Prometheus metrics
  /healthz  liveness probe

Examples:
  statecell-demo serve
  statecell-demo serve --addr=:9090 --tick=5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, namespace, anyOrigin, tick)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")
	cmd.Flags().StringVar(&namespace, "metrics-namespace", "statecell", "Prometheus metrics namespace")
	cmd.Flags().BoolVar(&anyOrigin, "any-origin", false, "Accept WebSocket connections from any origin")
	cmd.Flags().DurationVar(&tick, "tick", 0, "Increment the counter periodically (0 disables)")

	return cmd
}

func runServe(addr, namespace string, anyOrigin bool, tick time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	loop := runloop.New()

	counter := statecell.NewInt(0,
		statecell.WithName("counter"),
		statecell.WithInstrument(telemetry.Multi(
			telemetry.NewMetrics(telemetry.WithNamespace(namespace)),
			telemetry.NewTracing(),
		)),
	)

	feedOpts := []feed.Option{feed.WithLogger(logger)}
	if anyOrigin {
		feedOpts = append(feedOpts, feed.WithCheckOrigin(func(*http.Request) bool { return true }))
	}
	counterFeed := feed.New(counter.Cell, loop, feedOpts...)

	// The setter is callable from arbitrary outside code; the ticker
	// exercises that path from a plain goroutine via the loop.
	if tick > 0 {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		go func() {
			for range ticker.C {
				loop.Dispatch(counter.Inc)
			}
		}()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.OpenTelemetry(
		middleware.WithRequestFilter(func(req *http.Request) bool {
			return req.URL.Path != "/healthz" && req.URL.Path != "/metrics"
		}),
	))
	r.Use(middleware.Prometheus(middleware.WithNamespace(namespace)))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexPage))
	})
	r.Handle("/ws", counterFeed)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // WebSocket connections are long-lived
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := loop.Stop(shutdownCtx); err != nil {
		logger.Error("loop shutdown", "error", err)
	}
	return nil
}

// indexPage is the counter page. The script mirrors the feed protocol:
// value messages in, set messages out.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>statecell demo</title>
<style>
  body { font-family: sans-serif; max-width: 480px; margin: 80px auto; text-align: center; }
  #count { font-size: 64px; margin: 24px; }
  button { font-size: 24px; width: 56px; height: 56px; margin: 0 8px; cursor: pointer; }
  #status { color: #888; margin-top: 24px; }
</style>
</head>
<body>
<h1>Shared counter</h1>
<div id="count">&ndash;</div>
<button id="dec">&minus;</button>
<button id="inc">+</button>
<p id="status">connecting&hellip;</p>
<script>
(function() {
    'use strict';

    var current = 0;
    var ws = null;
    var reconnectDelay = 1000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onopen = function() {
            reconnectDelay = 1000;
            document.getElementById('status').textContent = 'live';
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            current = msg.value;
            document.getElementById('count').textContent = current;
        };

        ws.onclose = function() {
            document.getElementById('status').textContent = 'reconnecting…';
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, 30000);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function send(next) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify({set: next}));
        }
    }

    document.getElementById('inc').onclick = function() { send(current + 1); };
    document.getElementById('dec').onclick = function() { send(current - 1); };

    connect();
})();
</script>
</body>
</html>
`
