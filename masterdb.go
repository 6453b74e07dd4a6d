package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Master database ingestion. The snapshot is schema-validated into fully
// populated values: missing optional fields get explicit defaults and a
// collected warning, never a failure. Only an unreadable or unparseable
// file is fatal, because nothing can be simulated without a roster.

type MasterDB struct {
	Clubs        []*Club
	Players      []*Player
	Competitions []*Competition
	Warnings     []string
}

// Raw records use pointers so absent optional fields are distinguishable
// from zero values.
type rawClub struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ShortName     string `json:"short_name"`
	Country       string `json:"country"`
	Tier          *int   `json:"tier"`
	Reputation    *int   `json:"reputation"`
	Budget        *int64 `json:"budget"`
	WageBudget    *int64 `json:"wage_budget"`
	Stadium       string `json:"stadium"`
	StadiumSeats  *int   `json:"stadium_seats"`
	CompetitionID int    `json:"competition_id"`
	RivalIDs      []int  `json:"rival_ids"`
	Formation     string `json:"formation"`
}

type rawPlayer struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Age            *int    `json:"age"`
	Nationality    string  `json:"nationality"`
	Position       string  `json:"position"`
	AltPosition    string  `json:"alt_position"`
	Skill          *int    `json:"skill"`
	Potential      *int    `json:"potential"`
	Condition      string  `json:"condition"`
	ClubID         int     `json:"club_id"`
	Wage           *int64  `json:"wage"`
	ContractExpiry *string `json:"contract_expiry"`
	TransferStatus string  `json:"transfer_status"`
	MarketValue    *int64  `json:"market_value"`
	ReleaseClause  *int64  `json:"release_clause"`
}

type rawCompetition struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Country string `json:"country"`
	Tier    *int   `json:"tier"`
	TeamIDs []int  `json:"team_ids"`
}

type rawMasterDB struct {
	Clubs        json.RawMessage `json:"clubs"`
	Players      json.RawMessage `json:"players"`
	Competitions json.RawMessage `json:"competitions"`
}

// LoadMasterDB reads and validates the master database snapshot.
func LoadMasterDB(path string, now time.Time) (*MasterDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read master database: %w", err)
	}
	return ParseMasterDB(data, now)
}

// ParseMasterDB validates raw JSON into a fully populated MasterDB.
func ParseMasterDB(data []byte, now time.Time) (*MasterDB, error) {
	var raw rawMasterDB
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse master database: %w", err)
	}

	db := &MasterDB{}

	var clubs []rawClub
	if !decodeSection(raw.Clubs, &clubs) {
		db.warn("clubs section missing or malformed, substituting empty list")
	}
	var players []rawPlayer
	if !decodeSection(raw.Players, &players) {
		db.warn("players section missing or malformed, substituting empty list")
	}
	var comps []rawCompetition
	if !decodeSection(raw.Competitions, &comps) {
		db.warn("competitions section missing or malformed, substituting empty list")
	}

	for _, rc := range clubs {
		db.Clubs = append(db.Clubs, db.buildClub(rc))
	}
	for _, rp := range players {
		db.Players = append(db.Players, db.buildPlayer(rp, now))
	}
	for _, rc := range comps {
		db.Competitions = append(db.Competitions, db.buildCompetition(rc))
	}
	return db, nil
}

// decodeSection tolerates a missing or wrongly shaped top-level field by
// leaving the target empty.
func decodeSection(raw json.RawMessage, target interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false
	}
	return true
}

func (db *MasterDB) warn(format string, args ...interface{}) {
	db.Warnings = append(db.Warnings, fmt.Sprintf(format, args...))
}

func (db *MasterDB) buildClub(rc rawClub) *Club {
	c := &Club{
		ID:            rc.ID,
		Name:          rc.Name,
		ShortName:     rc.ShortName,
		Country:       rc.Country,
		Tier:          intOr(rc.Tier, 1),
		Reputation:    intOr(rc.Reputation, 50),
		Budget:        int64Or(rc.Budget, 5_000_000),
		WageBudget:    int64Or(rc.WageBudget, 500_000),
		Stadium:       rc.Stadium,
		StadiumSeats:  intOr(rc.StadiumSeats, 20_000),
		CompetitionID: rc.CompetitionID,
		RivalIDs:      rc.RivalIDs,
		Formation:     rc.Formation,
	}
	if rc.Reputation == nil {
		db.warn("club %d (%s): missing reputation, defaulted to 50", rc.ID, rc.Name)
	}
	if c.Reputation < 0 {
		c.Reputation = 0
	}
	if c.Reputation > 100 {
		c.Reputation = 100
	}
	return c
}

func (db *MasterDB) buildPlayer(rp rawPlayer, now time.Time) *Player {
	skill := clampSkill(intOr(rp.Skill, 50))
	potential := clampSkill(intOr(rp.Potential, skill))
	if potential < skill {
		db.warn("player %d (%s): potential %d below skill %d, raised", rp.ID, rp.Name, potential, skill)
		potential = skill
	}

	p := &Player{
		ID:             rp.ID,
		Name:           rp.Name,
		Age:            intOr(rp.Age, 24),
		Nationality:    rp.Nationality,
		Position:       rp.Position,
		AltPosition:    rp.AltPosition,
		Skill:          skill,
		Potential:      potential,
		Condition:      rp.Condition,
		ClubID:         rp.ClubID,
		TransferStatus: rp.TransferStatus,
		MarketValue:    int64Or(rp.MarketValue, int64(skill)*int64(skill)*2_000),
		ReleaseClause:  int64Or(rp.ReleaseClause, 0),
	}
	if p.Position == "" {
		p.Position = PosMF
	}
	if p.Condition == "" {
		p.Condition = TrendSteady
	}
	if p.TransferStatus == "" {
		p.TransferStatus = TransferAvailable
	}
	if rp.Wage != nil {
		p.Wage = *rp.Wage
	} else {
		p.Wage = computeWage(skill, p.MarketValue)
		db.warn("player %d (%s): missing wage, computed %d", rp.ID, rp.Name, p.Wage)
	}
	if rp.ContractExpiry != nil {
		if t, err := time.Parse("2006-01-02", *rp.ContractExpiry); err == nil {
			p.ContractExpiry = t
		} else {
			db.warn("player %d (%s): bad contract expiry %q, defaulted", rp.ID, rp.Name, *rp.ContractExpiry)
		}
	}
	if p.ContractExpiry.IsZero() {
		p.ContractExpiry = now.AddDate(2, 0, 0)
	}
	return p
}

func (db *MasterDB) buildCompetition(rc rawCompetition) *Competition {
	comp := &Competition{
		ID:        rc.ID,
		Name:      rc.Name,
		Type:      rc.Type,
		Country:   rc.Country,
		Tier:      intOr(rc.Tier, 1),
		TeamIDs:   rc.TeamIDs,
		Standings: make(map[int]*Standing),
	}
	if comp.Type == "" {
		comp.Type = CompLeague
	}
	return comp
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func int64Or(v *int64, def int64) int64 {
	if v != nil {
		return *v
	}
	return def
}

// Genesis populates an empty world from the master database, derives
// competition membership where the snapshot left it out, zeroes standings
// and generates every league's fixture calendar.
func (w *World) Genesis(db *MasterDB, start time.Time, userClubID int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Warnings = append(w.Warnings, db.Warnings...)
	for _, c := range db.Clubs {
		w.Clubs[c.ID] = c
	}
	for _, p := range db.Players {
		w.Players[p.ID] = p
	}
	for _, comp := range db.Competitions {
		if len(comp.TeamIDs) == 0 {
			for _, c := range db.Clubs {
				if c.CompetitionID == comp.ID {
					comp.TeamIDs = append(comp.TeamIDs, c.ID)
				}
			}
			if len(comp.TeamIDs) > 0 {
				w.Warnings = append(w.Warnings,
					fmt.Sprintf("competition %d (%s): team list derived from club membership", comp.ID, comp.Name))
			}
		}
		for _, id := range comp.TeamIDs {
			comp.Standings[id] = &Standing{ClubID: id}
		}
		w.Competitions[comp.ID] = comp
	}

	w.UserClubID = userClubID
	w.CurrentDate = nextSaturday(start)
	w.Season = fmt.Sprintf("%d/%02d", start.Year(), (start.Year()+1)%100)

	for _, comp := range w.Competitions {
		if comp.Type == CompLeague {
			w.generateFixtures(comp.ID, comp.TeamIDs, start)
		}
	}
	w.logf("INFO", "Genesis: %d clubs, %d players, %d competitions, %d fixtures",
		len(w.Clubs), len(w.Players), len(w.Competitions), len(w.Fixtures))
}
