// Package server wires handlers, middleware and routes into the HTTP mux.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/hptiles/tilebill/internal/auth"
	"github.com/hptiles/tilebill/internal/config"
	"github.com/hptiles/tilebill/internal/handlers"
	"github.com/hptiles/tilebill/internal/httpx"
	"github.com/hptiles/tilebill/internal/services"
)

// New builds the application handler: routes, auth, CORS, logging, recovery.
func New(cfg config.Config, db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	docs := services.NewDocumentService(db)
	mailer := services.NewMailer(cfg)

	authH := handlers.NewAuthHandler(db, mailer)
	uploadH := handlers.NewUploadHandler(cfg.UploadDir)
	stockH := handlers.NewStockHandler(db)
	invoiceH := handlers.NewInvoiceHandler(db, docs)
	challanH := handlers.NewChallanHandler(db, docs)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database_unreachable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public auth endpoints.
	mux.HandleFunc("POST /api/auth/register", authH.Register)
	mux.HandleFunc("POST /api/auth/verify-otp", authH.VerifyOTP)
	mux.HandleFunc("POST /api/auth/login", authH.Login)

	// Everything below requires a valid bearer token.
	protected := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }

	mux.Handle("GET /api/auth/user/{userId}", protected(authH.GetUser))
	mux.Handle("PUT /api/auth/update/{userId}", protected(authH.UpdateUser))
	mux.Handle("PUT /api/auth/update/company/{userId}", protected(authH.UpdateCompany))
	mux.Handle("POST /api/auth/upload", protected(uploadH.Upload))

	mux.Handle("GET /api/stocks/{userId}", protected(stockH.List))
	mux.Handle("POST /api/stocks/{userId}", protected(stockH.Create))
	mux.Handle("PUT /api/stocks/{userId}/{id}", protected(stockH.Update))
	mux.Handle("DELETE /api/stocks/{userId}/{id}", protected(stockH.Delete))
	mux.Handle("GET /api/stocks/{userId}/export", protected(stockH.Export))

	mux.Handle("POST /api/invoice", protected(invoiceH.Create))
	mux.Handle("GET /api/invoice/{userId}", protected(invoiceH.List))
	mux.Handle("GET /api/invoice/{id}/pdf", protected(invoiceH.PDF))

	mux.Handle("POST /api/dchallan", protected(challanH.Create))
	mux.Handle("GET /api/dchallan/{userId}", protected(challanH.List))
	mux.Handle("GET /api/dchallan/{id}/pdf", protected(challanH.PDF))

	// Uploaded images are served straight off disk.
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	corsMW := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	var h http.Handler = mux
	h = auth.Middleware(h)
	h = logging(h)
	h = corsMW(h)
	h = recovery(h)
	return h
}

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Millisecond))
	})
}

func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
