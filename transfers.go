package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Transfer negotiation: a two-party probabilistic model. The selling club
// and the target player roll independently; both must accept. Every tunable
// constant lives in NegotiationPolicy so the model can be tested and
// retuned without touching control flow.

// OfferResult is what the caller shows directly in the UI: a verdict and a
// human-readable sentence, never an error code.
type OfferResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NegotiationPolicy holds the acceptance-chance and interest-score tables.
type NegotiationPolicy struct {
	// Club acceptance by offer/value ratio, per transfer status.
	ListedBands    []AcceptanceBand
	AvailableBands []AcceptanceBand

	// Untouchable players need at least this ratio, and even then only
	// UntouchableChance.
	UntouchableMinRatio float64
	UntouchableChance   float64

	// Multiplicative discounts. These compound without renormalization;
	// the final chance is clamped.
	StarDiscount      float64 // skill >= StarSkill
	YouthDiscount     float64 // age <= YouthMaxAge and potential >= YouthMinPotential
	StarSkill         int
	YouthMaxAge       int
	YouthMinPotential int

	// Reputation gap scaling: chance *= 1 + gap/RepGapDivisor, gap clamped
	// to +-RepGapCap (positive gap = buyer is the bigger club).
	RepGapCap     float64
	RepGapDivisor float64

	MinChance float64
	MaxChance float64

	// Player interest score deltas, applied to a base of 50 and clamped
	// to [InterestMin, InterestMax].
	InterestRepCap     int // reputation delta contribution cap, +-
	YouthPenalty       int // young high-potential player at a reputable club
	YouthPenaltyMinRep int
	StarPenalty        int
	StarOffsetRatio    float64 // offers above this ratio win part of the penalty back
	StarOffset         int
	VeteranBonus       int // age >= VeteranAge
	VeteranAge         int
	ListedBonus        int
	LoanListedBonus    int
	InterestMin        int
	InterestMax        int

	// CPU offer generation.
	CPUOfferChance   float64
	CPUOfferMinRatio float64
	CPUOfferMaxRatio float64
}

// AcceptanceBand maps a minimum offer/value ratio to an acceptance chance.
// Bands are checked highest ratio first.
type AcceptanceBand struct {
	MinRatio float64
	Chance   float64
}

func DefaultNegotiationPolicy() NegotiationPolicy {
	return NegotiationPolicy{
		ListedBands: []AcceptanceBand{
			{1.0, 0.90}, {0.8, 0.70}, {0.6, 0.40}, {0, 0.15},
		},
		AvailableBands: []AcceptanceBand{
			{1.5, 0.75}, {1.2, 0.55}, {1.0, 0.35}, {0.8, 0.15}, {0, 0.05},
		},
		UntouchableMinRatio: 2.0,
		UntouchableChance:   0.10,

		StarDiscount:      0.6,
		YouthDiscount:     0.6,
		StarSkill:         80,
		YouthMaxAge:       23,
		YouthMinPotential: 85,

		RepGapCap:     40,
		RepGapDivisor: 200,
		MinChance:     0.01,
		MaxChance:     0.95,

		InterestRepCap:     40,
		YouthPenalty:       20,
		YouthPenaltyMinRep: 70,
		StarPenalty:        15,
		StarOffsetRatio:    1.3,
		StarOffset:         10,
		VeteranBonus:       15,
		VeteranAge:         30,
		ListedBonus:        25,
		LoanListedBonus:    15,
		InterestMin:        5,
		InterestMax:        95,

		CPUOfferChance:   0.15,
		CPUOfferMinRatio: 0.70,
		CPUOfferMaxRatio: 1.10,
	}
}

// transferWindowOpen reports whether transfers are permitted on the date.
func transferWindowOpen(date time.Time) bool {
	return transferWindowMonths[date.Month()]
}

// MakeOffer lets the user's club bid for a player. Preconditions are
// checked in order and short-circuit with a context-specific message.
func (w *World) MakeOffer(playerID int, amount int64) OfferResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !transferWindowOpen(w.CurrentDate) {
		return OfferResult{false, "The transfer window is closed."}
	}
	p := w.Players[playerID]
	if p == nil {
		return OfferResult{false, "That player could not be found."}
	}
	buyer := w.Clubs[w.UserClubID]
	if buyer == nil {
		return OfferResult{false, "Your club could not be found."}
	}
	if p.ClubID == buyer.ID {
		return OfferResult{false, fmt.Sprintf("%s already plays for you.", p.Name)}
	}
	if buyer.Budget < amount {
		return OfferResult{false, "You do not have the budget for this offer."}
	}
	if p.TransferStatus == TransferUntouchable && p.ReleaseClause == 0 {
		return OfferResult{false, fmt.Sprintf("%s is not for sale at any price.", p.Name)}
	}

	seller := w.Clubs[p.ClubID]

	// Club acceptance: automatic when a release clause is met, otherwise
	// a single roll against the policy table.
	clauseMet := p.ReleaseClause > 0 && amount >= p.ReleaseClause
	if !clauseMet && seller != nil {
		chance := w.policy.clubAcceptChance(p, seller, buyer, amount)
		if w.rng.Float64() >= chance {
			return OfferResult{false, clubRejectionMessage(p, amount)}
		}
	}

	// Player interest rolls independently, release clause or not.
	interest := w.policy.playerInterestScore(p, seller, buyer, amount)
	if w.rng.Intn(100) >= interest {
		return OfferResult{false, playerRejectionMessage(w.policy, p, seller, buyer)}
	}

	w.completeTransfer(p, seller, buyer, amount)
	return OfferResult{true, fmt.Sprintf("%s joins %s for %s.", p.Name, buyer.Name, formatFee(amount))}
}

// clubAcceptChance computes the selling club's acceptance probability. The
// skill, youth and reputation factors compound multiplicatively; only the
// final clamp keeps the value a probability.
func (pol *NegotiationPolicy) clubAcceptChance(p *Player, seller, buyer *Club, amount int64) float64 {
	ratio := offerRatio(amount, p.MarketValue)

	var chance float64
	switch p.TransferStatus {
	case TransferUntouchable:
		if ratio < pol.UntouchableMinRatio {
			return 0
		}
		chance = pol.UntouchableChance
	case TransferListed, TransferLoanListed:
		chance = bandChance(pol.ListedBands, ratio)
	default:
		chance = bandChance(pol.AvailableBands, ratio)
	}

	if p.Skill >= pol.StarSkill {
		chance *= pol.StarDiscount
	}
	if p.Age <= pol.YouthMaxAge && p.Potential >= pol.YouthMinPotential {
		chance *= pol.YouthDiscount
	}

	gap := float64(buyer.Reputation - seller.Reputation)
	if gap > pol.RepGapCap {
		gap = pol.RepGapCap
	}
	if gap < -pol.RepGapCap {
		gap = -pol.RepGapCap
	}
	chance *= 1 + gap/pol.RepGapDivisor

	if chance < pol.MinChance {
		chance = pol.MinChance
	}
	if chance > pol.MaxChance {
		chance = pol.MaxChance
	}
	return chance
}

// playerInterestScore starts at 50 and applies the policy deltas, clamped.
func (pol *NegotiationPolicy) playerInterestScore(p *Player, seller, buyer *Club, amount int64) int {
	score := 50

	sellerRep := 50
	if seller != nil {
		sellerRep = seller.Reputation
	}
	delta := buyer.Reputation - sellerRep
	if delta > pol.InterestRepCap {
		delta = pol.InterestRepCap
	}
	if delta < -pol.InterestRepCap {
		delta = -pol.InterestRepCap
	}
	score += delta

	if p.Age <= pol.YouthMaxAge && p.Potential >= pol.YouthMinPotential && sellerRep >= pol.YouthPenaltyMinRep {
		score -= pol.YouthPenalty
	}
	if p.Skill >= pol.StarSkill {
		score -= pol.StarPenalty
		if offerRatio(amount, p.MarketValue) > pol.StarOffsetRatio {
			score += pol.StarOffset
		}
	}
	if p.Age >= pol.VeteranAge {
		score += pol.VeteranBonus
	}
	switch p.TransferStatus {
	case TransferListed:
		score += pol.ListedBonus
	case TransferLoanListed:
		score += pol.LoanListedBonus
	}

	if score < pol.InterestMin {
		score = pol.InterestMin
	}
	if score > pol.InterestMax {
		score = pol.InterestMax
	}
	return score
}

func bandChance(bands []AcceptanceBand, ratio float64) float64 {
	for _, b := range bands {
		if ratio >= b.MinRatio {
			return b.Chance
		}
	}
	return 0
}

func offerRatio(amount, value int64) float64 {
	if value <= 0 {
		return 1
	}
	return float64(amount) / float64(value)
}

func clubRejectionMessage(p *Player, amount int64) string {
	switch {
	case p.TransferStatus == TransferUntouchable:
		return fmt.Sprintf("They have no intention of selling %s.", p.Name)
	case offerRatio(amount, p.MarketValue) < 1.0:
		return fmt.Sprintf("The offer falls well short of their valuation of %s.", p.Name)
	default:
		return fmt.Sprintf("%s is a key part of their plans and the approach was rejected.", p.Name)
	}
}

// playerRejectionMessage picks the sentence for whichever factor dominated
// the player's reluctance.
func playerRejectionMessage(pol NegotiationPolicy, p *Player, seller, buyer *Club) string {
	sellerRep := 50
	if seller != nil {
		sellerRep = seller.Reputation
	}
	switch {
	case buyer.Reputation < sellerRep-10:
		return fmt.Sprintf("%s has no interest in moving to a smaller club.", p.Name)
	case p.Age <= pol.YouthMaxAge && p.Potential >= pol.YouthMinPotential:
		return fmt.Sprintf("%s wants to continue developing where he is.", p.Name)
	case p.Skill >= pol.StarSkill:
		return fmt.Sprintf("%s is not convinced by the project.", p.Name)
	default:
		return fmt.Sprintf("%s turned down personal terms.", p.Name)
	}
}

// completeTransfer performs the ownership, wage, budget, history and news
// mutations shared by the negotiated and direct-sale paths. Callers hold
// the lock and have already verified the buyer's budget.
func (w *World) completeTransfer(p *Player, seller, buyer *Club, amount int64) {
	fromID := p.ClubID
	p.ClubID = buyer.ID
	p.TransferStatus = TransferAvailable
	p.Wage = computeWage(p.Skill, p.MarketValue)

	buyer.Budget -= amount
	if seller != nil {
		seller.Budget += amount
	}

	w.Transfers = append(w.Transfers, TransferRecord{
		PlayerID: p.ID,
		FromClub: fromID,
		ToClub:   buyer.ID,
		Fee:      amount,
		Date:     w.CurrentDate,
		Season:   w.Season,
	})
	w.pushNews(
		fmt.Sprintf("%s signs for %s", p.Name, buyer.Name),
		fmt.Sprintf("%s completed a %s move from %s.", p.Name, formatFee(amount), w.clubName(fromID)),
		"transfer")
	w.logf("INFO", "Transfer: %s %s -> %s (%s)", p.Name, w.clubName(fromID), buyer.Name, formatFee(amount))
}

// SellPlayer transfers a player to the named buying club with no
// negotiation rolls. Used when the user accepts a CPU offer.
func (w *World) SellPlayer(playerID, buyerClubID int, amount int64) OfferResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sellPlayerLocked(playerID, buyerClubID, amount)
}

func (w *World) sellPlayerLocked(playerID, buyerClubID int, amount int64) OfferResult {
	p := w.Players[playerID]
	if p == nil {
		return OfferResult{false, "That player could not be found."}
	}
	buyer := w.Clubs[buyerClubID]
	if buyer == nil {
		return OfferResult{false, "The buying club could not be found."}
	}
	if buyer.Budget < amount {
		return OfferResult{false, fmt.Sprintf("%s can no longer afford the fee.", buyer.Name)}
	}
	seller := w.Clubs[p.ClubID]
	w.completeTransfer(p, seller, buyer, amount)
	return OfferResult{true, fmt.Sprintf("%s sold to %s for %s.", p.Name, buyer.Name, formatFee(amount))}
}

// RespondToOffer resolves a pending CPU offer. Accepting performs the
// direct-sale mutation; either way the offer reaches a terminal status.
func (w *World) RespondToOffer(offerID string, accept bool) OfferResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	offer := w.Offers[offerID]
	if offer == nil {
		return OfferResult{false, "That offer could not be found."}
	}
	if offer.Status != OfferPending {
		return OfferResult{false, "That offer has already been resolved."}
	}
	if offer.Expired(w.CurrentDate) {
		return OfferResult{false, "That offer has expired."}
	}
	if !accept {
		offer.Status = OfferRejected
		return OfferResult{true, "Offer rejected."}
	}
	res := w.sellPlayerLocked(offer.PlayerID, offer.FromClub, offer.Amount)
	if res.Success {
		offer.Status = OfferAccepted
	}
	return res
}

// PendingOffers returns unresolved, unexpired offers for the user's squad.
// Expired offers are filtered lazily, never removed.
func (w *World) PendingOffers() []*TransferOffer {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []*TransferOffer
	for _, o := range w.Offers {
		if o.Status == OfferPending && !o.Expired(w.CurrentDate) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// generateCPUOffers rolls for incoming offers on the user's listed players
// during open windows. One pending unexpired offer per player at most.
// Callers hold the lock.
func (w *World) generateCPUOffers() {
	if !transferWindowOpen(w.CurrentDate) {
		return
	}

	listed := make([]*Player, 0)
	for _, p := range w.Players {
		if p.ClubID != w.UserClubID {
			continue
		}
		if p.TransferStatus == TransferListed || p.TransferStatus == TransferLoanListed {
			listed = append(listed, p)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].ID < listed[j].ID })

	for _, p := range listed {
		if w.hasPendingOffer(p.ID) {
			continue
		}
		if w.rng.Float64() >= w.policy.CPUOfferChance {
			continue
		}
		spread := w.policy.CPUOfferMaxRatio - w.policy.CPUOfferMinRatio
		amount := int64(float64(p.MarketValue) * (w.policy.CPUOfferMinRatio + w.rng.Float64()*spread))
		buyer := w.affordingCPUClub(amount)
		if buyer == nil {
			continue
		}
		offer := &TransferOffer{
			ID:       uuid.NewString(),
			PlayerID: p.ID,
			FromClub: buyer.ID,
			Amount:   amount,
			Created:  w.CurrentDate,
			Expires:  w.CurrentDate.AddDate(0, 0, OfferExpiryDays),
			Status:   OfferPending,
		}
		w.Offers[offer.ID] = offer
		w.pushNews(
			fmt.Sprintf("%s bid for %s", buyer.Name, p.Name),
			fmt.Sprintf("%s have offered %s for %s. The offer expires in %d days.",
				buyer.Name, formatFee(amount), p.Name, OfferExpiryDays),
			"transfer")
	}
}

func (w *World) hasPendingOffer(playerID int) bool {
	for _, o := range w.Offers {
		if o.PlayerID == playerID && o.Status == OfferPending && !o.Expired(w.CurrentDate) {
			return true
		}
	}
	return false
}

// affordingCPUClub picks a random non-user club that can pay the fee.
func (w *World) affordingCPUClub(amount int64) *Club {
	var candidates []*Club
	for _, c := range w.Clubs {
		if c.ID != w.UserClubID && c.Budget >= amount {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates[w.rng.Intn(len(candidates))]
}

// computeWage derives a weekly wage from skill and market value.
func computeWage(skill int, marketValue int64) int64 {
	wage := marketValue/200 + int64(skill)*500
	if wage < 1000 {
		wage = 1000
	}
	return wage
}

func formatFee(amount int64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("€%.1fM", float64(amount)/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("€%dK", amount/1_000)
	default:
		return fmt.Sprintf("€%d", amount)
	}
}
