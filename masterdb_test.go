package main

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMasterDBDefaults(t *testing.T) {
	data := []byte(`{
		"clubs": [{"id": 1, "name": "Rovers", "competition_id": 1}],
		"players": [{"id": 1, "name": "Sam Hill", "club_id": 1, "skill": 70, "potential": 60}],
		"competitions": [{"id": 1, "name": "First Division"}]
	}`)
	now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	db, err := ParseMasterDB(data, now)
	require.NoError(t, err)

	require.Len(t, db.Clubs, 1)
	c := db.Clubs[0]
	assert.Equal(t, 50, c.Reputation)
	assert.Equal(t, int64(5_000_000), c.Budget)
	assert.Equal(t, 1, c.Tier)

	require.Len(t, db.Players, 1)
	p := db.Players[0]
	assert.Equal(t, 70, p.Skill)
	assert.Equal(t, 70, p.Potential) // raised to skill, with a warning
	assert.Equal(t, int64(70*70*2_000), p.MarketValue)
	assert.Equal(t, computeWage(70, p.MarketValue), p.Wage)
	assert.Equal(t, now.AddDate(2, 0, 0), p.ContractExpiry)
	assert.Equal(t, TransferAvailable, p.TransferStatus)
	assert.Equal(t, PosMF, p.Position)
	assert.Equal(t, TrendSteady, p.Condition)
	assert.Zero(t, p.ReleaseClause)

	require.Len(t, db.Competitions, 1)
	assert.Equal(t, CompLeague, db.Competitions[0].Type)

	joined := strings.Join(db.Warnings, "\n")
	assert.Contains(t, joined, "reputation")
	assert.Contains(t, joined, "potential")
	assert.Contains(t, joined, "wage")
}

func TestParseMasterDBExplicitFieldsKept(t *testing.T) {
	data := []byte(`{
		"clubs": [{"id": 1, "name": "Rovers", "reputation": 82, "budget": 120000000}],
		"players": [{"id": 1, "name": "Sam Hill", "skill": 70, "potential": 88, "wage": 45000,
			"market_value": 30000000, "release_clause": 60000000,
			"contract_expiry": "2028-06-30", "transfer_status": "LISTED", "position": "FW"}],
		"competitions": [{"id": 1, "name": "Cup", "type": "KNOCKOUT"}]
	}`)
	db, err := ParseMasterDB(data, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 82, db.Clubs[0].Reputation)
	assert.Equal(t, int64(120_000_000), db.Clubs[0].Budget)

	p := db.Players[0]
	assert.Equal(t, 88, p.Potential)
	assert.Equal(t, int64(45_000), p.Wage)
	assert.Equal(t, int64(60_000_000), p.ReleaseClause)
	assert.Equal(t, TransferListed, p.TransferStatus)
	assert.Equal(t, 2028, p.ContractExpiry.Year())

	assert.Equal(t, CompKnockout, db.Competitions[0].Type)
}

func TestParseMasterDBMalformedSection(t *testing.T) {
	data := []byte(`{
		"clubs": "not a list",
		"players": [{"id": 1, "name": "Sam Hill"}],
		"competitions": [{"id": 1, "name": "First Division"}]
	}`)
	db, err := ParseMasterDB(data, time.Now())
	require.NoError(t, err)
	assert.Empty(t, db.Clubs)
	assert.Len(t, db.Players, 1)
	assert.Contains(t, strings.Join(db.Warnings, "\n"), "clubs section")
}

func TestParseMasterDBBadJSON(t *testing.T) {
	_, err := ParseMasterDB([]byte(`{not json`), time.Now())
	assert.Error(t, err)
}

func TestLoadMasterDBMissingFile(t *testing.T) {
	_, err := LoadMasterDB("/no/such/masterdb.json", time.Now())
	assert.Error(t, err)
}

func TestClubReputationClamped(t *testing.T) {
	data := []byte(`{"clubs": [{"id": 1, "name": "A", "reputation": 150}, {"id": 2, "name": "B", "reputation": -5}]}`)
	db, err := ParseMasterDB(data, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 100, db.Clubs[0].Reputation)
	assert.Equal(t, 0, db.Clubs[1].Reputation)
}

func TestShippedMasterDBSquadDepth(t *testing.T) {
	db, err := LoadMasterDB("masterdb.json", time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotEmpty(t, db.Clubs)

	// Every shipped club fields a full eleven with bench depth to spare, so
	// a couple of injuries or suspensions never stall a scheduled fixture.
	squads := make(map[int]int)
	keepers := make(map[int]int)
	for _, p := range db.Players {
		squads[p.ClubID]++
		if p.Position == PosGK {
			keepers[p.ClubID]++
		}
	}
	for _, c := range db.Clubs {
		assert.GreaterOrEqual(t, squads[c.ID], 14, "club %d squad too thin", c.ID)
		assert.GreaterOrEqual(t, keepers[c.ID], 1, "club %d has no goalkeeper", c.ID)
	}
}

func TestGenesis(t *testing.T) {
	db := &MasterDB{}
	for i := 1; i <= 4; i++ {
		db.Clubs = append(db.Clubs, &Club{ID: i, Name: "Club", CompetitionID: 1})
	}
	db.Competitions = []*Competition{
		{ID: 1, Name: "First Division", Type: CompLeague, Tier: 1, Standings: make(map[int]*Standing)},
	}

	w := NewWorld(rand.New(rand.NewSource(1)))
	start := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	w.Genesis(db, start, 1)

	assert.Equal(t, "2025/26", w.Season)
	assert.Equal(t, nextSaturday(start), w.CurrentDate)
	assert.Equal(t, 1, w.UserClubID)

	comp := w.Competitions[1]
	require.NotNil(t, comp)
	// Membership derived from club records, with a warning.
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, comp.TeamIDs)
	assert.Len(t, comp.Standings, 4)
	assert.NotEmpty(t, w.Warnings)

	assert.Len(t, w.Fixtures, 12) // 4 clubs, double round-robin
	for _, f := range w.Fixtures {
		assert.Equal(t, FixtureScheduled, f.Status)
	}
}
