package main

import "time"

// Fixture scheduling: classic circle method. One slot stays fixed while the
// rest rotate, producing n-1 balanced rounds; the second half of the season
// mirrors the first with home and away swapped.

const byeTeam = -1

// nextSaturday normalizes a start date forward to the nearest Saturday.
// A date already on Saturday is kept as is.
func nextSaturday(t time.Time) time.Time {
	days := (int(time.Saturday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, days)
}

// generateFixtures builds a full double round-robin calendar for one
// competition and registers the fixtures in the world. Competitions with
// fewer than two teams get no fixtures.
func (w *World) generateFixtures(compID int, teamIDs []int, start time.Time) []*Fixture {
	if len(teamIDs) < 2 {
		return nil
	}

	ids := make([]int, len(teamIDs))
	copy(ids, teamIDs)
	if len(ids)%2 == 1 {
		ids = append(ids, byeTeam)
	}
	n := len(ids)

	// Deterministic rotation seed so the same competition always yields
	// the same calendar for the same team list.
	for offset := compID % (n - 1); offset > 0; offset-- {
		rotateTail(ids)
	}

	firstDay := nextSaturday(start)
	var fixtures []*Fixture

	for round := 0; round < n-1; round++ {
		for i := 0; i < n/2; i++ {
			home, away := ids[i], ids[n-1-i]
			// Alternate sides every other round so home counts stay
			// balanced, the fixed slot included.
			if round%2 == 1 {
				home, away = away, home
			}
			if home == byeTeam || away == byeTeam {
				continue
			}
			fixtures = append(fixtures, &Fixture{
				CompetitionID: compID,
				Matchday:      round + 1,
				Date:          firstDay.AddDate(0, 0, round*MatchdayStepDays),
				HomeID:        home,
				AwayID:        away,
				Status:        FixtureScheduled,
			})
		}
		rotateTail(ids)
	}

	// Mirror fixtures for the second half: swap home/away, matchdays
	// n .. 2*(n-1).
	half := len(fixtures)
	for i := 0; i < half; i++ {
		f := fixtures[i]
		md := f.Matchday + n - 1
		fixtures = append(fixtures, &Fixture{
			CompetitionID: compID,
			Matchday:      md,
			Date:          firstDay.AddDate(0, 0, (md-1)*MatchdayStepDays),
			HomeID:        f.AwayID,
			AwayID:        f.HomeID,
			Status:        FixtureScheduled,
		})
	}

	for _, f := range fixtures {
		f.ID = w.nextFixtureID
		w.nextFixtureID++
		w.Fixtures[f.ID] = f
	}
	return fixtures
}

// rotateTail rotates every slot except the first one step clockwise.
func rotateTail(ids []int) {
	last := ids[len(ids)-1]
	copy(ids[2:], ids[1:len(ids)-1])
	ids[1] = last
}
