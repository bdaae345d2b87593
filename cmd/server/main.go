package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/hptiles/tilebill/internal/auth"
	"github.com/hptiles/tilebill/internal/config"
	"github.com/hptiles/tilebill/internal/db"
	"github.com/hptiles/tilebill/internal/models"
	"github.com/hptiles/tilebill/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := db.NormalizeDSN(cfg.DatabaseDSN)
	gdb, err := db.ConnectAndMigrate(dsn)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var n int64
		if err := gdb.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&n).Error; err != nil {
			return false
		}
		return n > 0
	})

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() { purgeExpiredOTPs(gdb) }); err != nil {
		log.Fatalf("cron: %v", err)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(cfg, gdb),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      2 * cfg.RequestTimeout, // PDF and XLSX downloads take longer
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (%s)", srv.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// purgeExpiredOTPs drops registration codes that can never verify again.
func purgeExpiredOTPs(gdb *gorm.DB) {
	res := gdb.Where("consumed = ? OR expires_at < ?", true, time.Now()).Delete(&models.OtpCode{})
	if res.Error != nil {
		log.Printf("otp purge: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("otp purge: removed %d codes", res.RowsAffected)
	}
}
