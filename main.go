package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/RobertDurfee/Gerrymandering/internal/config"
	"github.com/RobertDurfee/Gerrymandering/internal/db"
	"github.com/RobertDurfee/Gerrymandering/internal/geography"
	"github.com/RobertDurfee/Gerrymandering/internal/logger"
	"github.com/RobertDurfee/Gerrymandering/internal/metrics"
	"github.com/RobertDurfee/Gerrymandering/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	log := logger.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close(conn)

	exec := db.Executor{DB: conn}
	h := &geography.Handler{Exec: exec, Timeout: cfg.QueryTimeout}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.AccessMiddleware(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/", RootHandler)
	r.Get("/healthz", geography.Health(exec, 2*time.Second))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit.QPS, cfg.RateLimit.Burst))
		r.Mount("/", geography.SetupRoutes(h))
	})

	server := &http.Server{
		Addr:              "0.0.0.0:" + strconv.Itoa(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info("shutting down")
		server.Close()
	}()

	log.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server closed", "error", err)
	}
}
