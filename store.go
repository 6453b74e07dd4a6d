package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// Save persistence boundary. The core only reads and writes one snapshot
// blob; whether and where it is durably stored is the caller's problem. A
// background loop in main saves on a timer.

type SaveStore interface {
	SaveSnapshot(name string, data []byte) error
	LoadSnapshot(name string) ([]byte, error)
	Close() error
}

// MemoryStore is the default store when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	saves map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saves: make(map[string][]byte)}
}

func (s *MemoryStore) SaveSnapshot(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.saves[name] = cp
	return nil
}

func (s *MemoryStore) LoadSnapshot(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.saves[name]
	if !ok {
		return nil, fmt.Errorf("no snapshot named %q", name)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStore) Close() error { return nil }

// PostgresStore persists snapshots in a single upsert table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS save_snapshots (
		name VARCHAR(100) PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("migrate save_snapshots: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveSnapshot(name string, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO save_snapshots (name, data, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET data = $2, updated_at = CURRENT_TIMESTAMP`,
		name, data)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) LoadSnapshot(name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM save_snapshots WHERE name = $1`, name).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return data, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// worldSnapshot is the serialized form of the whole save.
type worldSnapshot struct {
	Clubs          []*Club          `json:"clubs"`
	Players        []*Player        `json:"players"`
	Competitions   []*Competition   `json:"competitions"`
	Fixtures       []*Fixture       `json:"fixtures"`
	Offers         []*TransferOffer `json:"offers"`
	CurrentDate    time.Time        `json:"current_date"`
	Season         string           `json:"season"`
	UserClubID     int              `json:"user_club_id"`
	SeasonComplete bool             `json:"season_complete"`
	Transfers      []TransferRecord `json:"transfers"`
	History        []MatchRecord    `json:"history"`
	News           []NewsItem       `json:"news"`
	SeasonHistory  []SeasonSummary  `json:"season_history"`
	Warnings       []string         `json:"warnings"`
	NextFixtureID  int              `json:"next_fixture_id"`
}

// Snapshot serializes the save state under the read lock.
func (w *World) Snapshot() ([]byte, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := worldSnapshot{
		CurrentDate:    w.CurrentDate,
		Season:         w.Season,
		UserClubID:     w.UserClubID,
		SeasonComplete: w.SeasonComplete,
		Transfers:      w.Transfers,
		History:        w.history.Items(),
		News:           w.news.Items(),
		SeasonHistory:  w.seasonHistory,
		Warnings:       w.Warnings,
		NextFixtureID:  w.nextFixtureID,
	}
	for _, c := range w.Clubs {
		snap.Clubs = append(snap.Clubs, c)
	}
	for _, p := range w.Players {
		snap.Players = append(snap.Players, p)
	}
	for _, comp := range w.Competitions {
		snap.Competitions = append(snap.Competitions, comp)
	}
	for _, f := range w.Fixtures {
		snap.Fixtures = append(snap.Fixtures, f)
	}
	for _, o := range w.Offers {
		snap.Offers = append(snap.Offers, o)
	}
	sort.Slice(snap.Clubs, func(i, j int) bool { return snap.Clubs[i].ID < snap.Clubs[j].ID })
	sort.Slice(snap.Players, func(i, j int) bool { return snap.Players[i].ID < snap.Players[j].ID })
	sort.Slice(snap.Fixtures, func(i, j int) bool { return snap.Fixtures[i].ID < snap.Fixtures[j].ID })

	return json.Marshal(snap)
}

// Restore replaces the whole save state from a snapshot blob.
func (w *World) Restore(data []byte) error {
	var snap worldSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.Clubs = make(map[int]*Club, len(snap.Clubs))
	for _, c := range snap.Clubs {
		w.Clubs[c.ID] = c
	}
	w.Players = make(map[int]*Player, len(snap.Players))
	for _, p := range snap.Players {
		w.Players[p.ID] = p
	}
	w.Competitions = make(map[int]*Competition, len(snap.Competitions))
	for _, comp := range snap.Competitions {
		w.Competitions[comp.ID] = comp
	}
	w.Fixtures = make(map[int]*Fixture, len(snap.Fixtures))
	for _, f := range snap.Fixtures {
		w.Fixtures[f.ID] = f
	}
	w.Offers = make(map[string]*TransferOffer, len(snap.Offers))
	for _, o := range snap.Offers {
		w.Offers[o.ID] = o
	}

	w.CurrentDate = snap.CurrentDate
	w.Season = snap.Season
	w.UserClubID = snap.UserClubID
	w.SeasonComplete = snap.SeasonComplete
	w.Transfers = snap.Transfers
	w.seasonHistory = snap.SeasonHistory
	w.Warnings = snap.Warnings
	w.nextFixtureID = snap.NextFixtureID

	w.history.Reset()
	for _, rec := range snap.History {
		w.history.Push(rec)
	}
	w.news.Reset()
	for _, item := range snap.News {
		w.news.Push(item)
	}
	return nil
}
