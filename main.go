package main

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hirehub/applications"
	"hirehub/assist"
	"hirehub/auth"
	"hirehub/config"
	"hirehub/db"
	"hirehub/filemgr"
	"hirehub/jobs"
	"hirehub/middleware"
	"hirehub/mq"
	"hirehub/notify"
	"hirehub/ratelim"
	"hirehub/rdx"
	"hirehub/routes"

	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so websocket upgrades work.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// loggingMiddleware logs each request method, path, status and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d from %s - %v", r.Method, r.RequestURI, rec.status, r.RemoteAddr, time.Since(start))
	})
}

func openStore(ctx context.Context, cfg *config.Config) (db.Store, func(context.Context) error, error) {
	if cfg.StoreDriver == "memory" {
		log.Println("Using in-memory store; data is lost on restart")
		return db.NewMemoryStore(), func(context.Context) error { return nil }, nil
	}
	m, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, nil, err
	}
	return m.Store(), m.Close, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	redisClient, err := rdx.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	hub := notify.NewHub()
	go hub.Run(ctx)

	emitter := mq.NewEmitter(redisClient)
	var events jobs.Emitter = emitter
	if redisClient == nil {
		events = hub
	} else {
		go emitter.Listen(ctx, hub.Dispatch)
	}

	ai, err := assist.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("assistant: %v", err)
	}

	sessions := rdx.NewSessions(redisClient)
	tokens := middleware.NewTokens(cfg.JWTSecret, middleware.TokenTTL)
	authMW := &middleware.Auth{
		Tokens:   tokens,
		Users:    store,
		Sessions: sessions,
		Cookie:   middleware.SessionCookie{Name: cfg.CookieName, Secure: cfg.CookieSecure},
	}
	files := filemgr.NewStore(cfg.UploadDir)

	limiter := ratelim.NewRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst)
	go limiter.Janitor(ctx.Done())

	router := routes.New(&routes.Deps{
		Auth:         authMW,
		Limiter:      limiter,
		Users:        auth.NewHandler(auth.NewService(store, tokens, sessions, files), authMW),
		Jobs:         jobs.NewHandler(jobs.NewService(store, events, cfg.PublicURL)),
		Applications: applications.NewHandler(applications.NewService(store, events)),
		Assist:       assist.NewHandler(ai),
		Hub:          hub,
		Origins:      cfg.Origins(),
		UploadDir:    files.Dir,
		UploadPrefix: files.URLPrefix,
	})

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received; shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	if err := closeStore(shutdownCtx); err != nil {
		log.Printf("close database: %v", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
	log.Println("Server stopped cleanly")
}
