package main

import (
	"math/rand"
	"sync"
	"time"
)

// String constants for statuses and enums
const (
	// Fixture statuses (one-way: SCHEDULED -> LIVE -> FINISHED)
	FixtureScheduled = "SCHEDULED"
	FixtureLive      = "LIVE"
	FixtureFinished  = "FINISHED"

	// Transfer statuses
	TransferAvailable   = "AVAILABLE"
	TransferListed      = "LISTED"
	TransferLoanListed  = "LOAN_LISTED"
	TransferUntouchable = "UNTOUCHABLE"

	// Offer statuses
	OfferPending  = "PENDING"
	OfferAccepted = "ACCEPTED"
	OfferRejected = "REJECTED"

	// Competition types
	CompLeague   = "LEAGUE"
	CompKnockout = "KNOCKOUT"

	// Condition trends
	TrendRising  = "RISING"
	TrendSteady  = "STEADY"
	TrendFalling = "FALLING"

	// Match event types
	EventGoal         = "GOAL"
	EventYellowCard   = "YELLOW_CARD"
	EventRedCard      = "RED_CARD"
	EventInjury       = "INJURY"
	EventSubstitution = "SUBSTITUTION"

	// Positions
	PosGK = "GK"
	PosDF = "DF"
	PosMF = "MF"
	PosFW = "FW"

	// Formations
	Formation442  = "4-4-2"
	Formation433  = "4-3-3"
	Formation352  = "3-5-2"
	Formation4231 = "4-2-3-1"

	// Form results
	FormWin  = "W"
	FormDraw = "D"
	FormLoss = "L"
)

// Game constants
const (
	FormLength          = 5   // Last N results kept per standing
	MatchdayStepDays    = 7   // Game clock advance per matchday
	MinFieldablePlayers = 11  // Squads below this are skipped in the cascade
	MaxMatchHistory     = 500 // Bounded match history, oldest evicted first
	MaxNewsEntries      = 200
	MaxLogEntries       = 1000
	MaxSeasonHistory    = 10

	SuspensionYellowCount = 5  // Every Nth yellow card triggers a one-match ban
	OfferExpiryDays       = 14 // CPU offers expire two weeks out
	NewsworthyInjuryWeeks = 3  // Injuries at least this long make the news
)

// Transfer windows: two summer months and one winter month, fixed.
var transferWindowMonths = map[time.Month]bool{
	time.July:    true,
	time.August:  true,
	time.January: true,
}

// Club is one club in the save, human- or CPU-controlled.
type Club struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ShortName     string `json:"short_name"`
	Country       string `json:"country"`
	Tier          int    `json:"tier"`
	Reputation    int    `json:"reputation"` // 0-100
	Budget        int64  `json:"budget"`
	WageBudget    int64  `json:"wage_budget"`
	Stadium       string `json:"stadium"`
	StadiumSeats  int    `json:"stadium_seats"`
	CompetitionID int    `json:"competition_id"`
	RivalIDs      []int  `json:"rival_ids,omitempty"`
	Formation     string `json:"formation,omitempty"` // Preferred formation, used in the cascade
}

// PlayerSeasonStats accumulate within one season and fold into career
// totals at rollover.
type PlayerSeasonStats struct {
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	CleanSheets int     `json:"clean_sheets"`
	YellowCards int     `json:"yellow_cards"`
	RedCards    int     `json:"red_cards"`
	Appearances int     `json:"appearances"`
	TotalRating float64 `json:"total_rating"`
	AvgRating   float64 `json:"avg_rating"`
}

// PlayerCareerStats are lifetime totals.
type PlayerCareerStats struct {
	Goals       int `json:"goals"`
	Assists     int `json:"assists"`
	CleanSheets int `json:"clean_sheets"`
	YellowCards int `json:"yellow_cards"`
	RedCards    int `json:"red_cards"`
	Appearances int `json:"appearances"`
	Seasons     int `json:"seasons"`
}

type Player struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Nationality    string    `json:"nationality"`
	Position       string    `json:"position"`
	AltPosition    string    `json:"alt_position,omitempty"`
	Skill          int       `json:"skill"`     // 1-99
	Potential      int       `json:"potential"` // >= skill, capped at 99
	Condition      string    `json:"condition"` // Trend enum
	ClubID         int       `json:"club_id"`   // 0 = free agent
	Wage           int64     `json:"wage"`
	ContractExpiry time.Time `json:"contract_expiry"`
	TransferStatus string    `json:"transfer_status"`
	MarketValue    int64     `json:"market_value"`
	ReleaseClause  int64     `json:"release_clause,omitempty"` // 0 = none

	SeasonStats PlayerSeasonStats `json:"season_stats"`
	CareerStats PlayerCareerStats `json:"career_stats"`

	InjuredUntil     *time.Time `json:"injured_until,omitempty"`
	SuspendedUntil   *time.Time `json:"suspended_until,omitempty"`
	SuspensionReason string     `json:"suspension_reason,omitempty"`
}

// Available reports whether the player can be fielded on the given date.
// The end date is inclusive: a one-match ban dated seven days forward still
// covers the matchday played exactly on that date.
func (p *Player) Available(now time.Time) bool {
	if p.InjuredUntil != nil && !now.After(*p.InjuredUntil) {
		return false
	}
	if p.SuspendedUntil != nil && !now.After(*p.SuspendedUntil) {
		return false
	}
	return true
}

// Standing is one club's row in a league table. Entries are created zeroed
// at season genesis and mutated incrementally, never recomputed.
type Standing struct {
	ClubID       int      `json:"club_id"`
	Played       int      `json:"played"`
	Won          int      `json:"won"`
	Drawn        int      `json:"drawn"`
	Lost         int      `json:"lost"`
	GoalsFor     int      `json:"goals_for"`
	GoalsAgainst int      `json:"goals_against"`
	Points       int      `json:"points"`
	Form         []string `json:"form"` // Most recent first, capped at FormLength
}

func (s *Standing) GoalDiff() int { return s.GoalsFor - s.GoalsAgainst }

type Competition struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Country   string            `json:"country"`
	Tier      int               `json:"tier"`
	TeamIDs   []int             `json:"team_ids"`
	Standings map[int]*Standing `json:"standings"`
}

type Fixture struct {
	ID            int       `json:"id"`
	CompetitionID int       `json:"competition_id"`
	Matchday      int       `json:"matchday"`
	Date          time.Time `json:"date"`
	HomeID        int       `json:"home_id"`
	AwayID        int       `json:"away_id"`
	Status        string    `json:"status"`
	HomeScore     int       `json:"home_score"`
	AwayScore     int       `json:"away_score"`
}

type TransferOffer struct {
	ID       string    `json:"id"`
	PlayerID int       `json:"player_id"`
	FromClub int       `json:"from_club"`
	Amount   int64     `json:"amount"`
	Created  time.Time `json:"created"`
	Expires  time.Time `json:"expires"`
	Status   string    `json:"status"`
}

// Expired offers are void but keep their PENDING status; readers filter.
func (o *TransferOffer) Expired(now time.Time) bool {
	return now.After(o.Expires)
}

type TransferRecord struct {
	PlayerID int       `json:"player_id"`
	FromClub int       `json:"from_club"`
	ToClub   int       `json:"to_club"`
	Fee      int64     `json:"fee"`
	Date     time.Time `json:"date"`
	Season   string    `json:"season"`
}

// MatchEvent is one entry of the ordered event list produced by the
// match-event generator.
type MatchEvent struct {
	Minute      int    `json:"minute"`
	Type        string `json:"type"`
	PlayerID    int    `json:"player_id"`
	AssistID    int    `json:"assist_id,omitempty"`
	InjuryWeeks int    `json:"injury_weeks,omitempty"`
}

// MatchResult is the opaque output of the match-event generator: final
// score, ordered events, and who actually took the pitch.
type MatchResult struct {
	HomeScore  int          `json:"home_score"`
	AwayScore  int          `json:"away_score"`
	Events     []MatchEvent `json:"events"`
	HomeLineup []int        `json:"home_lineup"`
	AwayLineup []int        `json:"away_lineup"`
	HomeSubsIn []int        `json:"home_subs_in"`
	AwaySubsIn []int        `json:"away_subs_in"`
}

type MatchRecord struct {
	FixtureID     int       `json:"fixture_id"`
	CompetitionID int       `json:"competition_id"`
	Matchday      int       `json:"matchday"`
	HomeID        int       `json:"home_id"`
	AwayID        int       `json:"away_id"`
	HomeScore     int       `json:"home_score"`
	AwayScore     int       `json:"away_score"`
	Date          time.Time `json:"date"`
}

type NewsItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Category string    `json:"category"` // "match", "injury", "transfer", "season"
	Date     time.Time `json:"date"`
}

type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SeasonSummary is written once per completed season into a bounded history.
type SeasonSummary struct {
	Season       string    `json:"season"`
	ChampionID   int       `json:"champion_id"`
	Champion     string    `json:"champion"`
	TopScorerID  int       `json:"top_scorer_id"`
	TopScorer    string    `json:"top_scorer"`
	Goals        int       `json:"goals"`
	TopAssistsID int       `json:"top_assists_id"`
	TopAssists   string    `json:"top_assists"`
	Assists      int       `json:"assists"`
	EndDate      time.Time `json:"end_date"`
}

// World owns every piece of mutable save state. All reads and writes go
// through its methods; one orchestration call holds the lock for its whole
// duration so partial matchday application is never observable.
type World struct {
	mu sync.RWMutex

	Clubs        map[int]*Club
	Players      map[int]*Player
	Competitions map[int]*Competition
	Fixtures     map[int]*Fixture
	Offers       map[string]*TransferOffer

	CurrentDate    time.Time
	Season         string
	UserClubID     int
	SeasonComplete bool

	Transfers     []TransferRecord
	history       *Ring[MatchRecord]
	news          *Ring[NewsItem]
	logs          *Ring[LogEntry]
	seasonHistory []SeasonSummary
	Warnings      []string

	policy    NegotiationPolicy
	simulator MatchSimulator
	rng       *rand.Rand
	feed      *Hub // Optional; nil in tests

	nextFixtureID int
}

// NewWorld builds an empty world around the given random source.
func NewWorld(rng *rand.Rand) *World {
	return &World{
		Clubs:         make(map[int]*Club),
		Players:       make(map[int]*Player),
		Competitions:  make(map[int]*Competition),
		Fixtures:      make(map[int]*Fixture),
		Offers:        make(map[string]*TransferOffer),
		history:       NewRing[MatchRecord](MaxMatchHistory),
		news:          NewRing[NewsItem](MaxNewsEntries),
		logs:          NewRing[LogEntry](MaxLogEntries),
		policy:        DefaultNegotiationPolicy(),
		simulator:     newPoissonSimulator(rng),
		rng:           rng,
		nextFixtureID: 1,
	}
}

func (w *World) club(id int) *Club     { return w.Clubs[id] }
func (w *World) player(id int) *Player { return w.Players[id] }

// squad returns every player owned by the club.
func (w *World) squad(clubID int) []*Player {
	var out []*Player
	for _, p := range w.Players {
		if p.ClubID == clubID {
			out = append(out, p)
		}
	}
	return out
}

// availableSquad returns players the club can field on the current date.
func (w *World) availableSquad(clubID int) []*Player {
	var out []*Player
	for _, p := range w.Players {
		if p.ClubID == clubID && p.Available(w.CurrentDate) {
			out = append(out, p)
		}
	}
	return out
}

func clampSkill(v int) int {
	if v < 1 {
		return 1
	}
	if v > 99 {
		return 99
	}
	return v
}
