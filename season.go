package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Season lifecycle: completion is detected and flagged, never acted on
// automatically, so the caller can show a summary before committing to the
// rollover.

// leaguesFinished reports whether every league fixture in the save is
// FINISHED. Knockout fixtures do not gate the season. Callers hold the lock.
func (w *World) leaguesFinished() bool {
	for _, f := range w.Fixtures {
		comp := w.Competitions[f.CompetitionID]
		if comp == nil || comp.Type != CompLeague {
			continue
		}
		if f.Status != FixtureFinished {
			return false
		}
	}
	return true
}

func (w *World) flagSeasonComplete() {
	if w.SeasonComplete {
		return
	}
	w.SeasonComplete = true
	w.pushNews(
		fmt.Sprintf("Season %s complete", w.Season),
		"Every league fixture has been played. Review the season summary before starting the next campaign.",
		"season")
	w.logf("INFO", "Season %s complete, rollover available", w.Season)
}

// clearExpiredAbsences drops injury and suspension markers whose end date
// has passed. Runs once per matchday after the clock advances.
func (w *World) clearExpiredAbsences() {
	for _, p := range w.Players {
		if p.InjuredUntil != nil && w.CurrentDate.After(*p.InjuredUntil) {
			p.InjuredUntil = nil
		}
		if p.SuspendedUntil != nil && w.CurrentDate.After(*p.SuspendedUntil) {
			p.SuspendedUntil = nil
			p.SuspensionReason = ""
		}
	}
}

// SeasonStatus is the read model for the current season.
type SeasonStatus struct {
	Season      string          `json:"season"`
	CurrentDate string          `json:"current_date"`
	Complete    bool            `json:"complete"`
	WindowOpen  bool            `json:"transfer_window_open"`
	History     []SeasonSummary `json:"history,omitempty"`
}

func (w *World) CurrentSeasonStatus() SeasonStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return SeasonStatus{
		Season:      w.Season,
		CurrentDate: w.CurrentDate.Format("2006-01-02"),
		Complete:    w.SeasonComplete,
		WindowOpen:  transferWindowOpen(w.CurrentDate),
		History:     w.seasonHistory,
	}
}

// RolloverSeason commits the season transition: summary into bounded
// history, season stats folded into careers, fresh fixtures from the
// scheduler, standings zeroed, label advanced, players a year older.
func (w *World) RolloverSeason() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.SeasonComplete {
		return fmt.Errorf("season %s is not complete", w.Season)
	}

	summary := w.buildSeasonSummary()
	w.seasonHistory = append(w.seasonHistory, summary)
	if len(w.seasonHistory) > MaxSeasonHistory {
		w.seasonHistory = w.seasonHistory[1:]
	}

	for _, p := range w.Players {
		p.CareerStats.Goals += p.SeasonStats.Goals
		p.CareerStats.Assists += p.SeasonStats.Assists
		p.CareerStats.CleanSheets += p.SeasonStats.CleanSheets
		p.CareerStats.YellowCards += p.SeasonStats.YellowCards
		p.CareerStats.RedCards += p.SeasonStats.RedCards
		p.CareerStats.Appearances += p.SeasonStats.Appearances
		p.CareerStats.Seasons++
		p.SeasonStats = PlayerSeasonStats{}
		p.Age++
		p.InjuredUntil = nil
		p.SuspendedUntil = nil
		p.SuspensionReason = ""
	}

	w.Fixtures = make(map[int]*Fixture)
	start := w.CurrentDate.AddDate(0, 0, 28) // short off-season break
	for _, comp := range w.Competitions {
		zeroStandings(comp)
		if comp.Type == CompLeague {
			w.generateFixtures(comp.ID, comp.TeamIDs, start)
		}
	}

	w.Season = nextSeasonLabel(w.Season)
	w.CurrentDate = nextSaturday(start)
	w.SeasonComplete = false
	w.pushNews(
		fmt.Sprintf("Season %s begins", w.Season),
		fmt.Sprintf("The new campaign kicks off on %s.", w.CurrentDate.Format("January 2, 2006")),
		"season")
	w.logf("INFO", "Rolled over to season %s", w.Season)
	return nil
}

func (w *World) buildSeasonSummary() SeasonSummary {
	summary := SeasonSummary{Season: w.Season, EndDate: w.CurrentDate}

	// Champion: top of the highest-tier league table.
	var top *Competition
	for _, comp := range w.Competitions {
		if comp.Type != CompLeague {
			continue
		}
		if top == nil || comp.Tier < top.Tier {
			top = comp
		}
	}
	if top != nil {
		if table := w.sortedTable(top); len(table) > 0 {
			summary.ChampionID = table[0].ClubID
			summary.Champion = w.clubName(table[0].ClubID)
		}
	}

	for _, p := range w.Players {
		if p.SeasonStats.Goals > summary.Goals {
			summary.Goals = p.SeasonStats.Goals
			summary.TopScorerID = p.ID
			summary.TopScorer = p.Name
		}
		if p.SeasonStats.Assists > summary.Assists {
			summary.Assists = p.SeasonStats.Assists
			summary.TopAssistsID = p.ID
			summary.TopAssists = p.Name
		}
	}
	return summary
}

// nextSeasonLabel advances labels like "2025/26" one year.
func nextSeasonLabel(label string) string {
	parts := strings.SplitN(label, "/", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return label
	}
	return fmt.Sprintf("%d/%02d", year+1, (year+2)%100)
}
