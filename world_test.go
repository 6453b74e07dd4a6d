package main

import (
	"fmt"
	"math/rand"
	"time"
)

// Shared test fixtures. Worlds are seeded deterministically; tests that
// depend on random outcomes either pin a seed or assert over many trials.

var testKickoff = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

func testWorld(seed int64) *World {
	w := NewWorld(rand.New(rand.NewSource(seed)))
	w.CurrentDate = nextSaturday(testKickoff)
	w.Season = "2025/26"
	w.UserClubID = 1
	return w
}

func seedClub(w *World, id, reputation int) *Club {
	c := &Club{
		ID:         id,
		Name:       fmt.Sprintf("Club %02d", id),
		Reputation: reputation,
		Budget:     50_000_000,
		WageBudget: 1_000_000,
	}
	w.Clubs[id] = c
	return c
}

// seedSquad adds size players to the club: a keeper, four defenders, four
// midfielders and forwards for the rest. IDs are allocated sequentially.
func seedSquad(w *World, clubID, size int) []*Player {
	out := make([]*Player, 0, size)
	for i := 0; i < size; i++ {
		id := len(w.Players) + 1
		pos := PosFW
		switch {
		case i == 0:
			pos = PosGK
		case i < 5:
			pos = PosDF
		case i < 9:
			pos = PosMF
		}
		p := &Player{
			ID:             id,
			Name:           fmt.Sprintf("Player %03d", id),
			Age:            26,
			Position:       pos,
			Skill:          60,
			Potential:      70,
			Condition:      TrendSteady,
			ClubID:         clubID,
			Wage:           10_000,
			ContractExpiry: testKickoff.AddDate(2, 0, 0),
			TransferStatus: TransferAvailable,
			MarketValue:    5_000_000,
		}
		w.Players[id] = p
		out = append(out, p)
	}
	return out
}

func seedLeague(w *World, compID int, clubIDs []int) *Competition {
	comp := &Competition{
		ID:        compID,
		Name:      fmt.Sprintf("League %d", compID),
		Type:      CompLeague,
		Tier:      compID,
		TeamIDs:   clubIDs,
		Standings: make(map[int]*Standing),
	}
	for _, id := range clubIDs {
		comp.Standings[id] = &Standing{ClubID: id}
	}
	w.Competitions[compID] = comp
	return comp
}

// leagueWorld builds one league of n clubs with 16-player squads and a
// generated calendar. Club 1 is the user's. Sixteen players leave enough
// slack for random injuries and bans across a couple of matchdays.
func leagueWorld(seed int64, n int) *World {
	w := testWorld(seed)
	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		seedClub(w, i, 50)
		seedSquad(w, i, 16)
		ids = append(ids, i)
	}
	seedLeague(w, 1, ids)
	w.generateFixtures(1, ids, testKickoff)
	return w
}
