package main

import "sort"

// Standings ledger: pure incremental update rules for two table rows.
// applyResult must run exactly once per finished fixture; the one-way
// FINISHED status transition is what enforces that upstream.
func applyResult(home, away *Standing, homeScore, awayScore int) {
	home.Played++
	away.Played++
	home.GoalsFor += homeScore
	home.GoalsAgainst += awayScore
	away.GoalsFor += awayScore
	away.GoalsAgainst += homeScore

	switch {
	case homeScore > awayScore:
		home.Won++
		home.Points += 3
		away.Lost++
		pushForm(home, FormWin)
		pushForm(away, FormLoss)
	case awayScore > homeScore:
		away.Won++
		away.Points += 3
		home.Lost++
		pushForm(away, FormWin)
		pushForm(home, FormLoss)
	default:
		home.Drawn++
		away.Drawn++
		home.Points++
		away.Points++
		pushForm(home, FormDraw)
		pushForm(away, FormDraw)
	}
}

// pushForm prepends the latest result and truncates to the last FormLength.
func pushForm(s *Standing, result string) {
	s.Form = append([]string{result}, s.Form...)
	if len(s.Form) > FormLength {
		s.Form = s.Form[:FormLength]
	}
}

// sortedTable returns the competition's standings ordered by points, goal
// difference, goals for, then club name for a stable tie-break.
func (w *World) sortedTable(comp *Competition) []*Standing {
	table := make([]*Standing, 0, len(comp.Standings))
	for _, s := range comp.Standings {
		table = append(table, s)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff() != b.GoalDiff() {
			return a.GoalDiff() > b.GoalDiff()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return w.clubName(a.ClubID) < w.clubName(b.ClubID)
	})
	return table
}

func (w *World) clubName(id int) string {
	if c := w.Clubs[id]; c != nil {
		return c.Name
	}
	return "Unknown"
}

// zeroStandings resets every entry in the competition, keeping the rows.
func zeroStandings(comp *Competition) {
	for id := range comp.Standings {
		comp.Standings[id] = &Standing{ClubID: id}
	}
}
