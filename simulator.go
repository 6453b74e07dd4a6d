package main

import (
	"math"
	"math/rand"
	"sort"
)

// MatchSimulator is the boundary to the match-event generator. The
// orchestrator hands over the clubs, their available squads and a formation
// hint, and treats whatever comes back as opaque.
type MatchSimulator interface {
	Simulate(home, away *Club, homeSquad, awaySquad []*Player, homeFormation, awayFormation string) *MatchResult
}

// poissonSimulator is the built-in generator: team strength from squad
// skill and club reputation feeds a Poisson goal model, then scorers,
// assists, cards and injuries are drawn from the fielded players.
type poissonSimulator struct {
	rng *rand.Rand
}

func newPoissonSimulator(rng *rand.Rand) *poissonSimulator {
	return &poissonSimulator{rng: rng}
}

func (s *poissonSimulator) Simulate(home, away *Club, homeSquad, awaySquad []*Player, homeFormation, awayFormation string) *MatchResult {
	homeXI, homeSubs := pickLineup(homeSquad, s.rng)
	awayXI, awaySubs := pickLineup(awaySquad, s.rng)

	homeStrength := teamStrength(home, homeXI) * 1.1 // home advantage
	awayStrength := teamStrength(away, awayXI)
	total := homeStrength + awayStrength
	homeGoals := s.samplePoisson(homeStrength / total * 2.7)
	awayGoals := s.samplePoisson(awayStrength / total * 2.7)

	res := &MatchResult{
		HomeScore:  homeGoals,
		AwayScore:  awayGoals,
		HomeLineup: playerIDs(homeXI),
		AwayLineup: playerIDs(awayXI),
		HomeSubsIn: playerIDs(homeSubs),
		AwaySubsIn: playerIDs(awaySubs),
	}

	fielded := func(xi, subs []*Player) []*Player { return append(append([]*Player{}, xi...), subs...) }
	homeFielded := fielded(homeXI, homeSubs)
	awayFielded := fielded(awayXI, awaySubs)

	for i := 0; i < homeGoals; i++ {
		res.Events = append(res.Events, s.goalEvent(homeFielded))
	}
	for i := 0; i < awayGoals; i++ {
		res.Events = append(res.Events, s.goalEvent(awayFielded))
	}

	everyone := append(append([]*Player{}, homeFielded...), awayFielded...)
	for _, p := range everyone {
		roll := s.rng.Float64()
		switch {
		case roll < 0.02:
			res.Events = append(res.Events, MatchEvent{
				Minute: 1 + s.rng.Intn(90), Type: EventRedCard, PlayerID: p.ID,
			})
		case roll < 0.12:
			res.Events = append(res.Events, MatchEvent{
				Minute: 1 + s.rng.Intn(90), Type: EventYellowCard, PlayerID: p.ID,
			})
		case roll < 0.14:
			res.Events = append(res.Events, MatchEvent{
				Minute: 1 + s.rng.Intn(90), Type: EventInjury, PlayerID: p.ID,
				InjuryWeeks: 1 + s.rng.Intn(6),
			})
		}
	}

	sort.SliceStable(res.Events, func(i, j int) bool { return res.Events[i].Minute < res.Events[j].Minute })
	return res
}

func (s *poissonSimulator) goalEvent(fielded []*Player) MatchEvent {
	scorer := weightedScorer(fielded, s.rng)
	ev := MatchEvent{Minute: 1 + s.rng.Intn(90), Type: EventGoal, PlayerID: scorer.ID}
	if s.rng.Float64() < 0.7 {
		if assister := randomOther(fielded, scorer.ID, s.rng); assister != nil {
			ev.AssistID = assister.ID
		}
	}
	return ev
}

func (s *poissonSimulator) samplePoisson(lambda float64) int {
	threshold := math.Exp(-lambda)
	p := 1.0
	k := 0
	for p > threshold {
		k++
		p *= s.rng.Float64()
	}
	return k - 1
}

// pickLineup chooses the strongest eleven with a goalkeeper first, plus up
// to three bench players treated as substitutes coming on.
func pickLineup(squad []*Player, rng *rand.Rand) (lineup, subsIn []*Player) {
	sorted := make([]*Player, len(squad))
	copy(sorted, squad)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Skill > sorted[j].Skill })

	var keeper *Player
	for _, p := range sorted {
		if p.Position == PosGK {
			keeper = p
			break
		}
	}
	if keeper != nil {
		lineup = append(lineup, keeper)
	}
	for _, p := range sorted {
		if len(lineup) == MinFieldablePlayers {
			break
		}
		if keeper != nil && p.ID == keeper.ID {
			continue
		}
		lineup = append(lineup, p)
	}

	inLineup := make(map[int]bool, len(lineup))
	for _, p := range lineup {
		inLineup[p.ID] = true
	}
	for _, p := range sorted {
		if len(subsIn) == 3 {
			break
		}
		if !inLineup[p.ID] && rng.Float64() < 0.6 {
			subsIn = append(subsIn, p)
		}
	}
	return lineup, subsIn
}

func teamStrength(club *Club, lineup []*Player) float64 {
	if len(lineup) == 0 {
		return 1
	}
	sum := 0
	for _, p := range lineup {
		sum += p.Skill
	}
	avg := float64(sum) / float64(len(lineup))
	rep := 50.0
	if club != nil {
		rep = float64(club.Reputation)
	}
	return avg*0.8 + rep*0.2
}

// weightedScorer favors forwards over midfielders over defenders.
func weightedScorer(fielded []*Player, rng *rand.Rand) *Player {
	weights := make([]int, len(fielded))
	total := 0
	for i, p := range fielded {
		w := 1
		switch p.Position {
		case PosFW:
			w = 8
		case PosMF:
			w = 4
		case PosDF:
			w = 2
		}
		weights[i] = w
		total += w
	}
	roll := rng.Intn(total)
	for i, w := range weights {
		roll -= w
		if roll < 0 {
			return fielded[i]
		}
	}
	return fielded[len(fielded)-1]
}

func randomOther(fielded []*Player, excludeID int, rng *rand.Rand) *Player {
	var candidates []*Player
	for _, p := range fielded {
		if p.ID != excludeID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rng.Intn(len(candidates))]
}

func playerIDs(players []*Player) []int {
	out := make([]int, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}
