// Package health reports dependency readiness over the standard gRPC health protocol and a plain
// HTTP endpoint.
package health

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmehra2102/storefront/pkg/httpjson"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type Monitor struct {
	log      *slog.Logger
	service  string
	checks   map[string]Check
	server   *grpchealth.Server
	interval time.Duration

	mu     sync.RWMutex
	failed map[string]string
}

func NewMonitor(log *slog.Logger, service string, checks map[string]Check) *Monitor {
	m := &Monitor{
		log:      log,
		service:  service,
		checks:   checks,
		server:   grpchealth.NewServer(),
		interval: 5 * time.Second,
		failed:   map[string]string{},
	}
	m.server.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	return m
}

// Probe runs every check once and publishes the result.
func (m *Monitor) Probe(ctx context.Context) bool {
	failed := map[string]string{}
	for name, check := range m.checks {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := check(cctx); err != nil {
			failed[name] = err.Error()
		}
		cancel()
	}

	m.mu.Lock()
	m.failed = failed
	m.mu.Unlock()

	status := healthpb.HealthCheckResponse_SERVING
	if len(failed) > 0 {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		m.log.Warn("health check failing", "failed", failed)
	}
	m.server.SetServingStatus(m.service, status)
	m.server.SetServingStatus("", status)
	return len(failed) == 0
}

func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-t.C:
			m.Probe(ctx)
		}
	}
}

func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	failed := make(map[string]string, len(m.failed))
	for k, v := range m.failed {
		failed[k] = v
	}
	m.mu.RUnlock()

	if len(failed) > 0 {
		httpjson.Write(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Serve starts the gRPC health server on addr in the background.
func (m *Monitor) Serve(addr string) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, m.server)
	go func() {
		if err := gs.Serve(lis); err != nil {
			m.log.Error("grpc health server stopped", "err", err)
		}
	}()
	return gs, nil
}
