// Package webapp serves the warehouse inventory screens over HTTP:
// login, count entry, machine records, reports with PDF/XLSX export,
// and the admin deletion panel.
package webapp

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adrianhv34-code/inventario-app/internal/db"
)

type Server struct {
	DB        *db.DB
	Logger    *slog.Logger
	Suppliers []string
	Machines  []string

	tmpl         *template.Template
	loginLimiter *fixedWindowLimiter
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
}

// New wires a Server with parsed templates, metrics, and the login rate
// limiter. Suppliers and machines are the fixed option lists from config.
func New(d *db.DB, lg *slog.Logger, suppliers, machines []string) (*Server, error) {
	if d == nil {
		return nil, errors.New("db is required")
	}
	if lg == nil {
		lg = slog.Default()
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path, and status.",
	}, []string{"method", "path", "status"})
	reg.MustRegister(requests)

	return &Server{
		DB:           d,
		Logger:       lg,
		Suppliers:    suppliers,
		Machines:     machines,
		tmpl:         tmpl,
		loginLimiter: newFixedWindowLimiter(20, time.Minute),
		registry:     reg,
		requests:     requests,
	}, nil
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.HandleFunc("/ingresar", s.withSession(s.handleEntryForm))
	mux.HandleFunc("/guardar-inventario", s.withSession(s.handleSaveInventory))
	mux.HandleFunc("/reporte", s.withSession(s.handleInventoryReport))
	mux.HandleFunc("/reporte/pdf", s.withSession(s.handleInventoryReportPDF))
	mux.HandleFunc("/reporte/xlsx", s.withSession(s.handleInventoryReportXLSX))

	mux.HandleFunc("/panel-borrado", s.withAdmin(s.handleDeletionPanel))
	mux.HandleFunc("/borrar-conteo/", s.withAdmin(s.handleDeleteCount))
	mux.HandleFunc("/borrar-maquina/", s.withAdmin(s.handleDeleteMachine))

	mux.HandleFunc("/maquinas", s.withGuest(s.handleMachineForm))
	mux.HandleFunc("/guardar-maquina", s.withGuest(s.handleSaveMachine))
	mux.HandleFunc("/reporte-maquinas", s.withGuest(s.handleMachineReport))
	mux.HandleFunc("/reporte-maquinas/pdf", s.withGuest(s.handleMachineReportPDF))
	mux.HandleFunc("/reporte-maquinas/xlsx", s.withGuest(s.handleMachineReportXLSX))

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("content-type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return s.withRecover(s.withRequestLog(withSecurityHeaders(mux)))
}

// ListenAndServe runs the HTTP server until it fails.
func (s *Server) ListenAndServe(bind string, port int) error {
	addr := bind + ":" + strconv.Itoa(port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.Logger.Info("listening", "addr", addr)
	return httpServer.ListenAndServe()
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-content-type-options", "nosniff")
		w.Header().Set("x-frame-options", "DENY")
		w.Header().Set("referrer-policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
