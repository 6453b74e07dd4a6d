package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessMatchResultDrivesWholeMatchday(t *testing.T) {
	w := leagueWorld(1, 8)
	anchor := w.nextUserFixture()
	require.NotNil(t, anchor)
	require.Equal(t, 1, anchor.Matchday)

	before := w.CurrentDate
	res := &MatchResult{HomeScore: 2, AwayScore: 1}
	require.NoError(t, w.ProcessMatchResult(anchor.HomeID, anchor.AwayID, 1, res))

	home := w.Competitions[1].Standings[anchor.HomeID]
	away := w.Competitions[1].Standings[anchor.AwayID]
	assert.Equal(t, 1, home.Played)
	assert.Equal(t, 1, home.Won)
	assert.Equal(t, 3, home.Points)
	assert.Equal(t, 2, home.GoalsFor)
	assert.Equal(t, 1, home.GoalsAgainst)
	assert.Equal(t, []string{FormWin}, home.Form)
	assert.Equal(t, 1, away.Played)
	assert.Equal(t, 1, away.Lost)
	assert.Equal(t, 0, away.Points)

	assert.Equal(t, FixtureFinished, anchor.Status)
	assert.Equal(t, 2, anchor.HomeScore)
	assert.Equal(t, 1, anchor.AwayScore)

	// The cascade finished the rest of matchday 1 and left later matchdays
	// alone.
	for _, f := range w.Fixtures {
		if f.Matchday == 1 {
			assert.Equal(t, FixtureFinished, f.Status, "fixture %d", f.ID)
		} else {
			assert.Equal(t, FixtureScheduled, f.Status, "fixture %d", f.ID)
		}
	}
	for _, st := range w.Competitions[1].Standings {
		assert.Equal(t, 1, st.Played, "club %d", st.ClubID)
	}

	assert.Equal(t, before.AddDate(0, 0, MatchdayStepDays), w.CurrentDate)
	assert.Len(t, w.MatchHistory(), 4) // anchor plus three cascaded matches
}

func TestProcessMatchResultUnknownClub(t *testing.T) {
	w := leagueWorld(2, 4)
	err := w.ProcessMatchResult(1, 99, 1, &MatchResult{})
	assert.Error(t, err)
}

func TestProcessMatchResultUnknownCompetition(t *testing.T) {
	w := leagueWorld(3, 4)
	res := &MatchResult{
		HomeScore:  1,
		HomeLineup: []int{5},
		Events:     []MatchEvent{{Minute: 10, Type: EventGoal, PlayerID: 5}},
	}
	err := w.ProcessMatchResult(1, 2, 42, res)
	assert.Error(t, err)
	// The failed call leaves no trace on player statistics.
	assert.Zero(t, w.Players[5].SeasonStats.Goals)
	assert.Zero(t, w.Players[5].SeasonStats.Appearances)
}

func TestFinishedPairingNeverReapplied(t *testing.T) {
	w := leagueWorld(4, 4)
	anchor := w.nextUserFixture()
	scorer := (anchor.HomeID-1)*16 + 5 // fifth player of the home squad
	res := &MatchResult{
		HomeScore:  1,
		HomeLineup: []int{scorer},
		Events:     []MatchEvent{{Minute: 20, Type: EventGoal, PlayerID: scorer}},
	}
	require.NoError(t, w.ProcessMatchResult(anchor.HomeID, anchor.AwayID, 1, res))

	home := w.Competitions[1].Standings[anchor.HomeID]
	dateAfterFirst := w.CurrentDate
	historyAfterFirst := len(w.MatchHistory())
	require.Equal(t, 1, w.Players[scorer].SeasonStats.Goals)
	require.Equal(t, 1, w.Players[scorer].SeasonStats.Appearances)

	// Same pairing again: the return leg has home and away swapped, so no
	// scheduled fixture matches and nothing moves — standings, fixture,
	// clock, history or player statistics.
	require.NoError(t, w.ProcessMatchResult(anchor.HomeID, anchor.AwayID, 1, res))
	assert.Equal(t, 1, home.Played)
	assert.Equal(t, 1, anchor.HomeScore)
	assert.Equal(t, dateAfterFirst, w.CurrentDate)
	assert.Len(t, w.MatchHistory(), historyAfterFirst)
	assert.Equal(t, 1, w.Players[scorer].SeasonStats.Goals)
	assert.Equal(t, 1, w.Players[scorer].SeasonStats.Appearances)
}

func TestFriendlyAccruesStatsOnly(t *testing.T) {
	w := leagueWorld(5, 4)
	// Club 1 owns players 1-16, club 2 owns 17-32; player 1 is the keeper.
	res := &MatchResult{
		HomeScore:  1,
		AwayScore:  0,
		HomeLineup: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		AwayLineup: []int{17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27},
		Events: []MatchEvent{
			{Minute: 10, Type: EventGoal, PlayerID: 5, AssistID: 6},
		},
	}
	before := w.CurrentDate
	require.NoError(t, w.ProcessMatchResult(1, 2, 0, res))

	assert.Equal(t, 1, w.Players[5].SeasonStats.Goals)
	assert.Equal(t, 1, w.Players[6].SeasonStats.Assists)
	assert.Equal(t, 1, w.Players[5].SeasonStats.Appearances)
	assert.Equal(t, 1, w.Players[17].SeasonStats.Appearances)
	assert.Equal(t, 1, w.Players[1].SeasonStats.CleanSheets)
	assert.InDelta(t, 7.0, w.Players[5].SeasonStats.AvgRating, 0.001)

	// No standings, fixture, clock or cascade effects, but the result still
	// lands in the history.
	for _, st := range w.Competitions[1].Standings {
		assert.Zero(t, st.Played)
	}
	for _, f := range w.Fixtures {
		assert.Equal(t, FixtureScheduled, f.Status)
	}
	assert.Equal(t, before, w.CurrentDate)
	history := w.MatchHistory()
	require.Len(t, history, 1)
	assert.Zero(t, history[0].FixtureID)
	assert.Equal(t, 1, history[0].HomeScore)
}

func TestFifthYellowTriggersBan(t *testing.T) {
	w := leagueWorld(6, 4)
	p := w.Players[20]
	p.SeasonStats.YellowCards = SuspensionYellowCount - 1

	res := &MatchResult{Events: []MatchEvent{{Minute: 30, Type: EventYellowCard, PlayerID: 20}}}
	require.NoError(t, w.ProcessMatchResult(1, 2, 0, res))

	require.NotNil(t, p.SuspendedUntil)
	assert.Equal(t, "yellow card accumulation", p.SuspensionReason)
	assert.Equal(t, w.CurrentDate.AddDate(0, 0, MatchdayStepDays), *p.SuspendedUntil)
	// The ban covers the next matchday exactly and nothing beyond it.
	assert.False(t, p.Available(w.CurrentDate.AddDate(0, 0, MatchdayStepDays)))
	assert.True(t, p.Available(w.CurrentDate.AddDate(0, 0, MatchdayStepDays+1)))
}

func TestFourthYellowIsNoBan(t *testing.T) {
	w := leagueWorld(7, 4)
	p := w.Players[20]
	p.SeasonStats.YellowCards = SuspensionYellowCount - 2

	res := &MatchResult{Events: []MatchEvent{{Minute: 30, Type: EventYellowCard, PlayerID: 20}}}
	require.NoError(t, w.ProcessMatchResult(1, 2, 0, res))
	assert.Equal(t, SuspensionYellowCount-1, p.SeasonStats.YellowCards)
	assert.Nil(t, p.SuspendedUntil)
}

func TestRedCardSuspends(t *testing.T) {
	w := leagueWorld(8, 4)
	p := w.Players[3]
	res := &MatchResult{Events: []MatchEvent{{Minute: 55, Type: EventRedCard, PlayerID: 3}}}
	require.NoError(t, w.ProcessMatchResult(1, 2, 0, res))

	assert.Equal(t, 1, p.SeasonStats.RedCards)
	require.NotNil(t, p.SuspendedUntil)
	assert.Equal(t, "sent off", p.SuspensionReason)
}

func TestInjurySetsRecoveryDate(t *testing.T) {
	w := leagueWorld(9, 4)
	p := w.Players[7]
	res := &MatchResult{Events: []MatchEvent{{Minute: 70, Type: EventInjury, PlayerID: 7, InjuryWeeks: 3}}}
	require.NoError(t, w.ProcessMatchResult(1, 2, 0, res))

	require.NotNil(t, p.InjuredUntil)
	assert.Equal(t, w.CurrentDate.AddDate(0, 0, 21), *p.InjuredUntil)
	assert.False(t, p.Available(w.CurrentDate))
}

func TestCascadeSkipsShortSquads(t *testing.T) {
	w := leagueWorld(10, 4)
	anchor := w.nextUserFixture()

	var other *Fixture
	for _, f := range w.Fixtures {
		if f.Matchday == 1 && f.ID != anchor.ID {
			other = f
		}
	}
	require.NotNil(t, other)

	out := w.CurrentDate.AddDate(0, 0, 60)
	for _, p := range w.squad(other.HomeID) {
		p.InjuredUntil = &out
	}

	require.NoError(t, w.ProcessMatchResult(anchor.HomeID, anchor.AwayID, 1, &MatchResult{HomeScore: 1}))
	assert.Equal(t, FixtureScheduled, other.Status)
	assert.Zero(t, w.Competitions[1].Standings[other.HomeID].Played)
	assert.Zero(t, w.Competitions[1].Standings[other.AwayID].Played)
}

func TestCascadeCoversOtherCompetitions(t *testing.T) {
	w := leagueWorld(11, 4)
	seedClub(w, 9, 50)
	seedSquad(w, 9, 14)
	seedClub(w, 10, 50)
	seedSquad(w, 10, 14)
	seedLeague(w, 2, []int{9, 10})
	w.generateFixtures(2, []int{9, 10}, testKickoff)

	anchor := w.nextUserFixture()
	require.NoError(t, w.ProcessMatchResult(anchor.HomeID, anchor.AwayID, 1, &MatchResult{HomeScore: 1, AwayScore: 1}))

	finished := 0
	for _, f := range w.Fixtures {
		if f.CompetitionID == 2 && f.Matchday == 1 {
			assert.Equal(t, FixtureFinished, f.Status)
			finished++
		}
	}
	assert.Equal(t, 1, finished)
}

func TestSeasonCompletionFlag(t *testing.T) {
	w := leagueWorld(12, 2) // two clubs, two fixtures

	first := w.nextUserFixture()
	require.NoError(t, w.ProcessMatchResult(first.HomeID, first.AwayID, 1, &MatchResult{HomeScore: 1}))
	assert.False(t, w.SeasonComplete)

	second := w.nextUserFixture()
	require.NotNil(t, second)
	require.NoError(t, w.ProcessMatchResult(second.HomeID, second.AwayID, 1, &MatchResult{AwayScore: 2}))
	assert.True(t, w.SeasonComplete)
}

func TestPlayNextUserMatchday(t *testing.T) {
	w := leagueWorld(13, 4)

	fixture, res, err := w.PlayNextUserMatchday()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, fixture.Matchday)
	assert.Equal(t, FixtureFinished, fixture.Status)

	fixture2, _, err := w.PlayNextUserMatchday()
	require.NoError(t, err)
	assert.Equal(t, 2, fixture2.Matchday)
}

func TestPlayNextUserMatchdayNoFixture(t *testing.T) {
	w := testWorld(14)
	seedClub(w, 1, 50)
	_, _, err := w.PlayNextUserMatchday()
	assert.Error(t, err)
}

func TestPlayNextUserMatchdayShortSquad(t *testing.T) {
	w := leagueWorld(15, 4)
	out := w.CurrentDate.AddDate(0, 0, 60)
	squad := w.squad(1)
	for _, p := range squad[:6] { // 16 - 6 = 10, one short of a full side
		p.InjuredUntil = &out
	}
	_, _, err := w.PlayNextUserMatchday()
	assert.Error(t, err)
}

func TestMatchRatingBounds(t *testing.T) {
	res := &MatchResult{Events: []MatchEvent{
		{Type: EventGoal, PlayerID: 1},
		{Type: EventGoal, PlayerID: 1},
		{Type: EventGoal, PlayerID: 1},
		{Type: EventGoal, PlayerID: 1},
		{Type: EventGoal, PlayerID: 1},
	}}
	assert.Equal(t, 10.0, matchRating(1, res))

	res = &MatchResult{Events: []MatchEvent{
		{Type: EventRedCard, PlayerID: 2},
		{Type: EventRedCard, PlayerID: 2},
		{Type: EventRedCard, PlayerID: 2},
		{Type: EventRedCard, PlayerID: 2},
	}}
	assert.Equal(t, 1.0, matchRating(2, res))
}
