package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"strconv"
	"time"

	"go-fleet-ops-dashboard/internal/auth"
	"go-fleet-ops-dashboard/internal/config"
	fleetstore "go-fleet-ops-dashboard/internal/connectors/fleetdb"
	gaugestore "go-fleet-ops-dashboard/internal/connectors/gauges"
	paystore "go-fleet-ops-dashboard/internal/connectors/paydb"
	telstore "go-fleet-ops-dashboard/internal/connectors/telematics"
)

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer   *nethttp.Server
	fleetStore   *fleetstore.Store
	payStore     *paystore.Store
	telClient    *telstore.Client
	gaugeScraper *gaugestore.Scraper
	gaugeConfig  struct {
		matchPrefix string
		interval    time.Duration
	}
	gaugeCancel context.CancelFunc
}

// NewServer creates a configured HTTP server with v1 endpoints.
func NewServer(cfg config.Config) (*Server, error) {
	var store *fleetstore.Store
	if cfg.FleetDBEnabled {
		createdStore, err := fleetstore.NewStore(cfg)
		if err != nil {
			return nil, err
		}
		store = createdStore
	}
	var payStore *paystore.Store
	if cfg.PayDBEnabled {
		createdStore, err := paystore.NewStore(cfg)
		if err != nil {
			return nil, err
		}
		payStore = createdStore
	}
	var gaugeScraper *gaugestore.Scraper
	if cfg.GaugesEnabled {
		gaugeScraper = gaugestore.NewScraper(cfg.GaugeTargets, cfg.GaugeScrapeTimeout, cfg.GaugeHistoryMaxPoints)
	}
	var telClient *telstore.Client
	if cfg.TelematicsEnabled {
		telClient = telstore.NewClient(cfg.TelematicsEndpoint, cfg.TelematicsProvider, cfg.TelematicsTimeout)
	}

	perms := permissionsFromConfig(cfg)

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/", dashboardHandler)
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/api/v1/metrics/app", appMetricsSummaryHandler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/api/v1/tanks", tanksHandler(cfg, store))
	mux.HandleFunc("/api/v1/tanks/export.csv", tanksExportHandler(cfg, store, perms))
	mux.HandleFunc("/api/v1/drivers", driversHandler(cfg, store))
	mux.HandleFunc("/api/v1/drivers/export.csv", driversExportHandler(cfg, store, perms))
	mux.HandleFunc("/api/v1/drivers/", driverEventsRouter(cfg, store, telClient))
	mux.HandleFunc("/api/v1/vehicles", vehiclesHandler(cfg, store))
	mux.HandleFunc("/api/v1/vehicles/export.csv", vehiclesExportHandler(cfg, store, perms))
	mux.HandleFunc("/api/v1/maintenance", maintenanceHandler(cfg, store))
	mux.HandleFunc("/api/v1/maintenance/export.csv", maintenanceExportHandler(cfg, store, perms))
	mux.HandleFunc("/api/v1/deliveries", deliveriesHandler(cfg, payStore))
	mux.HandleFunc("/api/v1/deliveries/export.csv", deliveriesExportHandler(cfg, payStore, perms))
	mux.HandleFunc("/api/v1/charts/deliveries", deliveriesChartHandler(payStore))
	mux.HandleFunc("/api/v1/charts/tank-levels", tankLevelsChartHandler(store, gaugeScraper, cfg.GaugeMatchPrefix))
	mux.HandleFunc("/api/v1/reports/fleet-summary", fleetSummaryHandler(cfg.DefaultFleet, store, payStore))
	mux.HandleFunc("/api/v1/views", savedViewsHandler(cfg, store, perms))
	mux.HandleFunc("/api/v1/views/", savedViewDetailHandler(store, perms))
	mux.HandleFunc("/api/v1/carriers", carriersHandler(cfg, store))
	mux.HandleFunc("/api/v1/carriers/", carrierMappingsRouter(store, perms))
	mux.HandleFunc("/api/v1/status/services", servicesStatusHandler(store, payStore, telClient, gaugeScraper))
	mux.HandleFunc("/api/v1/status/carrier-mapping", carrierMappingStatusHandler(store))
	mux.HandleFunc("/api/v1/settings/risk-thresholds", riskThresholdsHandler(cfg))

	httpServer := &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      loggingMiddleware(observabilityMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	s := &Server{httpServer: httpServer, fleetStore: store, payStore: payStore, telClient: telClient, gaugeScraper: gaugeScraper}
	s.gaugeConfig.matchPrefix = cfg.GaugeMatchPrefix
	s.gaugeConfig.interval = cfg.GaugeScrapeInterval
	return s, nil
}

func permissionsFromConfig(cfg config.Config) auth.Permissions {
	caps := make([]auth.Capability, 0, 3)
	if cfg.AllowExport {
		caps = append(caps, auth.CapExport)
	}
	if cfg.AllowViewWrites {
		caps = append(caps, auth.CapWriteViews, auth.CapWriteMappings)
	}
	return auth.NewPermissions(caps...)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	if s.gaugeScraper != nil && s.gaugeScraper.Enabled() {
		ctx, cancel := context.WithCancel(context.Background())
		s.gaugeCancel = cancel
		go s.startGaugePoller(ctx)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.gaugeCancel != nil {
		s.gaugeCancel()
	}
	if s.fleetStore != nil {
		_ = s.fleetStore.Close()
	}
	if s.payStore != nil {
		_ = s.payStore.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) startGaugePoller(ctx context.Context) {
	interval := s.gaugeConfig.interval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	_, _ = s.gaugeScraper.Scrape(ctx, s.gaugeConfig.matchPrefix)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.gaugeScraper.Scrape(ctx, s.gaugeConfig.matchPrefix)
		}
	}
}

func healthHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func readyHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ready",
	})
}

func loggingMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		fmt.Printf("%s %s %s %s\n", r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(start))
	})
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
