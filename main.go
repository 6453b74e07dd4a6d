package main

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/cors"
)

var version = "1.0.0"

// Config holds all application configuration parsed from environment
// variables.
type Config struct {
	Port         int    `env:"PORT" envDefault:"8080"`
	MasterDBPath string `env:"MASTER_DB_PATH" envDefault:"masterdb.json"`
	UserClubID   int    `env:"USER_CLUB_ID" envDefault:"1"`
	StartDate    string `env:"START_DATE" envDefault:"2025-08-01"`
	Seed         int64  `env:"SEED"`

	// Persistence. With no DATABASE_URL the save lives in memory only.
	DatabaseURL  string        `env:"DATABASE_URL"`
	SaveName     string        `env:"SAVE_NAME" envDefault:"default"`
	SaveInterval time.Duration `env:"SAVE_INTERVAL" envDefault:"60s"`
	ResumeSave   bool          `env:"RESUME_SAVE" envDefault:"false"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func logPrint(level, msg string) {
	log.Printf("[%s] %s", level, msg)
}

func loadVersion() {
	if data, err := os.ReadFile("version.txt"); err == nil {
		version = strings.TrimSpace(string(data))
	}
}

func main() {
	loadVersion()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	world := NewWorld(rand.New(rand.NewSource(seed)))

	var store SaveStore
	if cfg.DatabaseURL != "" {
		store, err = NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("save store: %v", err)
		}
	} else {
		store = NewMemoryStore()
		log.Printf("[WARN] no DATABASE_URL set, saves are in-memory only")
	}
	defer store.Close()

	if cfg.ResumeSave {
		data, err := store.LoadSnapshot(cfg.SaveName)
		if err != nil {
			log.Fatalf("resume save %q: %v", cfg.SaveName, err)
		}
		if err := world.Restore(data); err != nil {
			log.Fatalf("restore save %q: %v", cfg.SaveName, err)
		}
		log.Printf("[INFO] resumed save %q", cfg.SaveName)
	} else {
		start, err := time.Parse("2006-01-02", cfg.StartDate)
		if err != nil {
			log.Fatalf("bad START_DATE %q: %v", cfg.StartDate, err)
		}
		// Failing to load the master database is the one fatal genesis error.
		db, err := LoadMasterDB(cfg.MasterDBPath, start)
		if err != nil {
			log.Fatalf("genesis: %v", err)
		}
		world.Genesis(db, start, cfg.UserClubID)
		for _, warning := range db.Warnings {
			log.Printf("[WARN] master database: %s", warning)
		}
	}

	hub := NewHub()
	go hub.Run()
	world.feed = hub

	go saveLoop(world, store, cfg.SaveName, cfg.SaveInterval)

	api := newAPIServer(world, hub, version)
	handler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSAllowedOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}).Handler(api.routes())

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	fmt.Printf("⚽ Gaffer API v%s listening on %s\n", version, addr)
	fmt.Printf("📚 Homepage: http://%s/\n", addr)
	fmt.Printf("🏥 Health:   http://%s/api/v1/health\n", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}

// saveLoop snapshots the world on a timer. Save failures are logged, never
// fatal; the simulation does not depend on durability.
func saveLoop(world *World, store SaveStore, name string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		data, err := world.Snapshot()
		if err != nil {
			log.Printf("[ERROR] snapshot: %v", err)
			continue
		}
		if err := store.SaveSnapshot(name, data); err != nil {
			log.Printf("[ERROR] save snapshot: %v", err)
		}
	}
}
