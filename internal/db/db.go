package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hptiles/tilebill/internal/config"
	"github.com/hptiles/tilebill/internal/models"
)

// All persisted models, in FK dependency order.
func allModels() []interface{} {
	return []interface{}{
		&models.User{}, &models.OtpCode{}, &models.CompanyProfile{},
		&models.StockItem{},
		&models.Invoice{}, &models.InvoiceItem{},
		&models.DeliveryChallan{}, &models.ChallanItem{},
	}
}

// ConnectAndMigrate opens the postgres connection (with retries) and brings
// the schema up to date. MIGRATIONS=1 runs the SQL files in ./migrations via
// golang-migrate; the default is gorm AutoMigrate for dev convenience.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.Println("[DB] Using DSN:", maskDSN(dsn))

	if config.ParseBool("MIGRATIONS", false) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range allModels() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"users", "stock_items", "invoices", "delivery_challans"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if config.ParseBool("DB_SEED", false) {
		Seed(db)
	}
	return db, nil
}

var (
	kvPassRe  = regexp.MustCompile(`(password=)(\S+)`)
	urlPassRe = regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
)

func maskDSN(dsn string) string {
	if strings.Contains(dsn, "password=") {
		return kvPassRe.ReplaceAllString(dsn, `${1}***`)
	}
	return urlPassRe.ReplaceAllString(dsn, `${1}***${3}`)
}

// runSQLMigrations executes migrations in ./migrations using the file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Seed inserts a demo verified user and a few stock rows when the database
// is empty. Development convenience only.
func Seed(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	user := models.User{
		Email: "demo@hptiles.local",
		// bcrypt of "demo1234"
		Password: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Username: "hptiles",
		Name:     "Demo",
		Phone:    "7014318580",
		State:    "Rajasthan",
		Verified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return
	}
	db.Create(&models.CompanyProfile{
		UserID:      user.ID,
		CompanyName: "HP TILES",
		Address1:    "J1-197, 1st Phase, Sangaria",
		Address2:    "Jodhpur - 342013, Rajasthan",
		GSTIN:       "08ACAPL1601L1ZW",
		PAN:         "ACAPL1601L",
		Mobile:      "7014318580",
	})
	stock := []models.StockItem{
		{UserID: user.ID, ItemName: "Vitrified Tile 600x600", Brand: "Kajaria", BatchNo: "VT-24-01", Quantity: 120, Price: 540},
		{UserID: user.ID, ItemName: "Ceramic Wall Tile 300x450", Brand: "Somany", BatchNo: "CW-24-07", Quantity: 200, Price: 310},
		{UserID: user.ID, ItemName: "Parking Tile 300x300", Brand: "Nitco", BatchNo: "PK-23-11", Quantity: 60, Price: 280},
	}
	db.Create(&stock)
}
