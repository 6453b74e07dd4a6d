package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Match orchestration: one externally produced result for the user's club
// drives a fully consistent global matchday. The world lock is held for the
// whole call, so partial application (standings updated, fixture still
// SCHEDULED) is never observable from outside.

// ProcessMatchResult applies the anchor match and cascades the matchday.
// compID 0 means a friendly: player statistics and the match history still
// accrue but there are no standings, fixture, cascade or clock effects.
func (w *World) ProcessMatchResult(homeID, awayID, compID int, res *MatchResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.Clubs[homeID] == nil || w.Clubs[awayID] == nil {
		return fmt.Errorf("unknown club in pairing %d vs %d", homeID, awayID)
	}

	if compID == 0 {
		// Friendlies skip standings, fixtures, the cascade and the clock,
		// but stats still accrue and the result makes the history and news.
		w.applyPlayerEffects(res)
		w.applyAppearances(res)
		w.recordMatch(0, 0, 0, homeID, awayID, res.HomeScore, res.AwayScore)
		w.emitMatchNews(homeID, awayID, compID, res)
		w.logf("INFO", "Friendly processed: %s %d-%d %s",
			w.clubName(homeID), res.HomeScore, res.AwayScore, w.clubName(awayID))
		return nil
	}

	// Validate everything before mutating anything: a result that cannot be
	// anchored must leave no trace, and a pairing whose fixture is already
	// FINISHED must apply exactly zero times.
	comp := w.Competitions[compID]
	if comp == nil {
		return fmt.Errorf("unknown competition %d", compID)
	}
	anchor := w.findScheduledFixture(compID, homeID, awayID)
	if anchor == nil {
		w.logf("WARN", "No scheduled fixture found for %s vs %s in competition %d",
			w.clubName(homeID), w.clubName(awayID), compID)
		return nil
	}

	// Player effects from the event list, then appearances.
	w.applyPlayerEffects(res)
	w.applyAppearances(res)

	// Standings ledger for the anchor, then the bounded match history and
	// the news, so anchor items precede anything the cascade produces.
	w.applyStandings(comp, homeID, awayID, res.HomeScore, res.AwayScore)
	w.recordMatch(anchor.ID, compID, anchor.Matchday, homeID, awayID, res.HomeScore, res.AwayScore)
	w.emitMatchNews(homeID, awayID, compID, res)

	// Flip the anchor fixture. One-way transition; once FINISHED the
	// cascade can never re-simulate the pairing.
	anchor.Status = FixtureFinished
	anchor.HomeScore = res.HomeScore
	anchor.AwayScore = res.AwayScore

	// Cascade every other competition's same matchday.
	w.cascadeMatchday(anchor.Matchday)

	// Advance the game clock and clear expired absences.
	w.CurrentDate = w.CurrentDate.AddDate(0, 0, MatchdayStepDays)
	w.clearExpiredAbsences()

	// CPU interest in listed players, transfer windows permitting.
	w.generateCPUOffers()

	// Season completion is flagged, never auto-rolled.
	if w.leaguesFinished() {
		w.flagSeasonComplete()
	}
	return nil
}

// applyPlayerEffects walks the ordered event list: goals and assists, card
// accumulation with suspensions, and injury recovery dates.
func (w *World) applyPlayerEffects(res *MatchResult) {
	for _, ev := range res.Events {
		p := w.Players[ev.PlayerID]
		if p == nil {
			continue
		}
		switch ev.Type {
		case EventGoal:
			p.SeasonStats.Goals++
			if assister := w.Players[ev.AssistID]; assister != nil {
				assister.SeasonStats.Assists++
			}
		case EventYellowCard:
			p.SeasonStats.YellowCards++
			if p.SeasonStats.YellowCards%SuspensionYellowCount == 0 {
				until := w.CurrentDate.AddDate(0, 0, MatchdayStepDays)
				p.SuspendedUntil = &until
				p.SuspensionReason = "yellow card accumulation"
			}
		case EventRedCard:
			p.SeasonStats.RedCards++
			until := w.CurrentDate.AddDate(0, 0, MatchdayStepDays)
			p.SuspendedUntil = &until
			p.SuspensionReason = "sent off"
		case EventInjury:
			if ev.InjuryWeeks > 0 {
				until := w.CurrentDate.AddDate(0, 0, ev.InjuryWeeks*7)
				p.InjuredUntil = &until
			}
		}
	}
}

// applyAppearances credits everyone who took the pitch, clean sheets for
// keepers behind a shutout, and a per-match rating derived from the events.
func (w *World) applyAppearances(res *MatchResult) {
	w.creditSide(res, append(res.HomeLineup, res.HomeSubsIn...), res.AwayScore)
	w.creditSide(res, append(res.AwayLineup, res.AwaySubsIn...), res.HomeScore)
}

func (w *World) creditSide(res *MatchResult, fielded []int, conceded int) {
	for _, id := range fielded {
		p := w.Players[id]
		if p == nil {
			continue
		}
		p.SeasonStats.Appearances++
		if p.Position == PosGK && conceded == 0 {
			p.SeasonStats.CleanSheets++
		}
		p.SeasonStats.TotalRating += matchRating(id, res)
		p.SeasonStats.AvgRating = p.SeasonStats.TotalRating / float64(p.SeasonStats.Appearances)
	}
}

// matchRating is a simple per-match score: 6.0 base adjusted by the
// player's own events.
func matchRating(playerID int, res *MatchResult) float64 {
	rating := 6.0
	for _, ev := range res.Events {
		switch {
		case ev.Type == EventGoal && ev.PlayerID == playerID:
			rating += 1.0
		case ev.Type == EventGoal && ev.AssistID == playerID:
			rating += 0.5
		case ev.Type == EventYellowCard && ev.PlayerID == playerID:
			rating -= 0.5
		case ev.Type == EventRedCard && ev.PlayerID == playerID:
			rating -= 1.5
		}
	}
	if rating < 1 {
		rating = 1
	}
	if rating > 10 {
		rating = 10
	}
	return rating
}

func (w *World) applyStandings(comp *Competition, homeID, awayID, hs, as int) {
	home := comp.Standings[homeID]
	away := comp.Standings[awayID]
	if home == nil || away == nil {
		w.logf("WARN", "Missing standing entry for %d or %d in %s", homeID, awayID, comp.Name)
		return
	}
	applyResult(home, away, hs, as)
}

// findScheduledFixture returns the earliest still-scheduled fixture for the
// pairing, or nil. Already finished fixtures never match again.
func (w *World) findScheduledFixture(compID, homeID, awayID int) *Fixture {
	var match *Fixture
	for _, f := range w.Fixtures {
		if f.CompetitionID != compID || f.Status == FixtureFinished {
			continue
		}
		if f.HomeID != homeID || f.AwayID != awayID {
			continue
		}
		if match == nil || f.Matchday < match.Matchday {
			match = f
		}
	}
	return match
}

func (w *World) recordMatch(fixtureID, compID, matchday, homeID, awayID, hs, as int) {
	rec := MatchRecord{
		FixtureID:     fixtureID,
		CompetitionID: compID,
		Matchday:      matchday,
		HomeID:        homeID,
		AwayID:        awayID,
		HomeScore:     hs,
		AwayScore:     as,
		Date:          w.CurrentDate,
	}
	w.history.Push(rec)
	if w.feed != nil {
		w.feed.Broadcast("result", rec)
	}
}

// cascadeMatchday simulates every other still-scheduled fixture sharing the
// anchor's matchday, across all competitions. Fixtures involving the user's
// club are never touched, and a pairing where either side cannot field
// eleven available players is left SCHEDULED.
func (w *World) cascadeMatchday(matchday int) {
	pending := make([]*Fixture, 0)
	for _, f := range w.Fixtures {
		if f.Status != FixtureScheduled || f.Matchday != matchday {
			continue
		}
		if f.HomeID == w.UserClubID || f.AwayID == w.UserClubID {
			continue
		}
		pending = append(pending, f)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })

	simulated := 0
	for _, f := range pending {
		homeSquad := w.availableSquad(f.HomeID)
		awaySquad := w.availableSquad(f.AwayID)
		if len(homeSquad) < MinFieldablePlayers || len(awaySquad) < MinFieldablePlayers {
			continue // recoverable scheduling anomaly, not an error
		}

		home, away := w.Clubs[f.HomeID], w.Clubs[f.AwayID]
		res := w.simulator.Simulate(home, away, homeSquad, awaySquad,
			clubFormation(home), clubFormation(away))
		if res == nil {
			continue
		}

		w.applyPlayerEffects(res)
		w.applyAppearances(res)
		if comp := w.Competitions[f.CompetitionID]; comp != nil {
			w.applyStandings(comp, f.HomeID, f.AwayID, res.HomeScore, res.AwayScore)
		}
		f.Status = FixtureFinished
		f.HomeScore = res.HomeScore
		f.AwayScore = res.AwayScore
		w.recordMatch(f.ID, f.CompetitionID, f.Matchday, f.HomeID, f.AwayID, res.HomeScore, res.AwayScore)
		simulated++
	}
	if simulated > 0 {
		w.logf("INFO", "Matchday %d cascade: %d CPU matches simulated", matchday, simulated)
	}
}

func clubFormation(c *Club) string {
	if c != nil && c.Formation != "" {
		return c.Formation
	}
	return Formation442
}

// emitMatchNews publishes a result item when the user's club was involved
// and an injury item for any knock of three weeks or more.
func (w *World) emitMatchNews(homeID, awayID, compID int, res *MatchResult) {
	if homeID == w.UserClubID || awayID == w.UserClubID {
		title := fmt.Sprintf("%s %d - %d %s",
			w.clubName(homeID), res.HomeScore, res.AwayScore, w.clubName(awayID))
		body := "Full time."
		if compID == 0 {
			body = "Friendly, full time."
		}
		w.pushNews(title, body, "match")
	}
	for _, ev := range res.Events {
		if ev.Type != EventInjury || ev.InjuryWeeks < NewsworthyInjuryWeeks {
			continue
		}
		if p := w.Players[ev.PlayerID]; p != nil {
			w.pushNews(
				fmt.Sprintf("%s out for %d weeks", p.Name, ev.InjuryWeeks),
				fmt.Sprintf("%s picked up an injury in the %d' and faces %d weeks on the sidelines.",
					p.Name, ev.Minute, ev.InjuryWeeks),
				"injury")
		}
	}
}

func (w *World) pushNews(title, body, category string) {
	item := NewsItem{
		ID:       uuid.NewString(),
		Title:    title,
		Body:     body,
		Category: category,
		Date:     w.CurrentDate,
	}
	w.news.Push(item)
	if w.feed != nil {
		w.feed.Broadcast("news", item)
	}
}

// PlayNextUserMatchday simulates the user's next scheduled fixture with the
// built-in generator and processes it as the anchor match.
func (w *World) PlayNextUserMatchday() (*Fixture, *MatchResult, error) {
	w.mu.Lock()
	next := w.nextUserFixture()
	if next == nil {
		w.mu.Unlock()
		return nil, nil, fmt.Errorf("no scheduled fixture for the user's club")
	}
	homeSquad := w.availableSquad(next.HomeID)
	awaySquad := w.availableSquad(next.AwayID)
	if len(homeSquad) < MinFieldablePlayers || len(awaySquad) < MinFieldablePlayers {
		w.mu.Unlock()
		return nil, nil, fmt.Errorf("cannot field eleven available players for fixture %d", next.ID)
	}
	home, away := w.Clubs[next.HomeID], w.Clubs[next.AwayID]
	res := w.simulator.Simulate(home, away, homeSquad, awaySquad,
		clubFormation(home), clubFormation(away))
	homeID, awayID, compID := next.HomeID, next.AwayID, next.CompetitionID
	w.mu.Unlock()

	if err := w.ProcessMatchResult(homeID, awayID, compID, res); err != nil {
		return nil, nil, err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return next, res, nil
}

// nextUserFixture returns the user's earliest scheduled fixture, by
// matchday then fixture id. Callers hold the lock.
func (w *World) nextUserFixture() *Fixture {
	var next *Fixture
	for _, f := range w.Fixtures {
		if f.Status != FixtureScheduled {
			continue
		}
		if f.HomeID != w.UserClubID && f.AwayID != w.UserClubID {
			continue
		}
		if next == nil || f.Matchday < next.Matchday ||
			(f.Matchday == next.Matchday && f.ID < next.ID) {
			next = f
		}
	}
	return next
}

// MatchHistory returns the bounded match history, oldest first.
func (w *World) MatchHistory() []MatchRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.history.Items()
}

func (w *World) logf(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logPrint(level, msg)
	w.logs.Push(LogEntry{Level: level, Message: msg, Time: time.Now()})
}
