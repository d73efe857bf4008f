package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/session-replay/internal/config"
	"github.com/annel0/session-replay/internal/eventbus"
	"github.com/annel0/session-replay/internal/logging"
	"github.com/annel0/session-replay/internal/metrics"
	"github.com/annel0/session-replay/internal/observability"
	"github.com/annel0/session-replay/internal/storage"
)

// env общие для команд ресурсы: хранилище, шина событий, телеметрия, /metrics
type env struct {
	store    storage.LogStore
	bus      eventbus.EventBus
	listener eventbus.Subscription
	busStats *eventbus.BusCollector
	server   *http.Server
	shutdown observability.Shutdown
}

// openEnv поднимает окружение по конфигурации. При ошибке уже открытые
// ресурсы закрываются.
func openEnv(ctx context.Context, c *config.Config) (_ *env, err error) {
	e := &env{}
	defer func() {
		if err != nil {
			e.Close(ctx)
		}
	}()

	if e.shutdown, err = observability.InitTelemetry(ctx, c.Telemetry); err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	if e.store, err = storage.Open(ctx, c.Storage); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	if e.bus, err = eventbus.NewFromConfig(c.EventBus); err != nil {
		return nil, fmt.Errorf("eventbus: %w", err)
	}
	if e.listener, err = eventbus.StartLoggingListener(e.bus); err != nil {
		return nil, fmt.Errorf("eventbus listener: %w", err)
	}

	if port := c.Metrics.GetPort(); port > 0 {
		if e.busStats, err = eventbus.RegisterBusMetrics(e.bus, prometheus.DefaultRegisterer); err != nil {
			return nil, fmt.Errorf("eventbus metrics: %w", err)
		}
		e.serveMetrics(port)
	}
	return e, nil
}

func (e *env) serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	e.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logging.Info("Метрики Prometheus: http://localhost:%d/metrics", port)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка сервера метрик: %v", err)
		}
	}()
}

// Close освобождает ресурсы в порядке, обратном открытию
func (e *env) Close(ctx context.Context) {
	if e.server != nil {
		sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_ = e.server.Shutdown(sctx)
		cancel()
	}
	if e.busStats != nil {
		e.busStats.Unregister()
	}
	if e.listener != nil {
		e.listener.Unsubscribe()
	}
	if e.bus != nil {
		if err := e.bus.Close(); err != nil {
			logging.Warn("Закрытие шины событий: %v", err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			logging.Warn("Закрытие хранилища: %v", err)
		}
	}
	if e.shutdown != nil {
		if err := e.shutdown(ctx); err != nil {
			logging.Warn("Остановка телеметрии: %v", err)
		}
	}
}
