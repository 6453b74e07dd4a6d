package main

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// HTTP surface. Handlers are thin: decode, call into the world, encode.
// Precondition failures come back as 200s with {success:false, message}
// because the message is shown verbatim in the UI.

type apiServer struct {
	world     *World
	hub       *Hub
	version   string
	startTime time.Time
}

func newAPIServer(world *World, hub *Hub, version string) *apiServer {
	return &apiServer{world: world, hub: hub, version: version, startTime: time.Now()}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(mux.Vars(r)[name])
	return v
}

func (s *apiServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"version":    s.version,
		"uptime":     time.Since(s.startTime).String(),
		"goroutines": runtime.NumGoroutine(),
	})
}

// getStats summarizes the save: counts, clock, and market activity.
func (s *apiServer) getStats(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()

	played := 0
	for _, f := range s.world.Fixtures {
		if f.Status == FixtureFinished {
			played++
		}
	}
	pending := 0
	for _, o := range s.world.Offers {
		if o.Status == OfferPending && !o.Expired(s.world.CurrentDate) {
			pending++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season":          s.world.Season,
		"current_date":    s.world.CurrentDate.Format("2006-01-02"),
		"season_complete": s.world.SeasonComplete,
		"clubs":           len(s.world.Clubs),
		"players":         len(s.world.Players),
		"competitions":    len(s.world.Competitions),
		"fixtures":        len(s.world.Fixtures),
		"fixtures_played": played,
		"transfers":       len(s.world.Transfers),
		"pending_offers":  pending,
	})
}

func (s *apiServer) getWarnings(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"warnings": s.world.Warnings})
}

func (s *apiServer) getLogs(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.world.logs.Newest(100))
}

func (s *apiServer) getNews(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.world.news.Newest(50))
}

func (s *apiServer) getClubs(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	clubs := make([]*Club, 0, len(s.world.Clubs))
	for _, c := range s.world.Clubs {
		clubs = append(clubs, c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].ID < clubs[j].ID })
	writeJSON(w, http.StatusOK, clubs)
}

func (s *apiServer) getClub(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	c := s.world.Clubs[pathInt(r, "id")]
	if c == nil {
		writeError(w, http.StatusNotFound, "club not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *apiServer) getClubSquad(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	id := pathInt(r, "id")
	if s.world.Clubs[id] == nil {
		writeError(w, http.StatusNotFound, "club not found")
		return
	}
	squad := s.world.squad(id)
	sort.Slice(squad, func(i, j int) bool { return squad[i].ID < squad[j].ID })
	writeJSON(w, http.StatusOK, squad)
}

func (s *apiServer) getPlayers(w http.ResponseWriter, r *http.Request) {
	clubFilter := r.URL.Query().Get("club_id")
	statusFilter := r.URL.Query().Get("transfer_status")

	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	players := make([]*Player, 0, len(s.world.Players))
	for _, p := range s.world.Players {
		if clubFilter != "" && strconv.Itoa(p.ClubID) != clubFilter {
			continue
		}
		if statusFilter != "" && p.TransferStatus != statusFilter {
			continue
		}
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	writeJSON(w, http.StatusOK, players)
}

func (s *apiServer) getPlayer(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	p := s.world.Players[pathInt(r, "id")]
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *apiServer) getCompetitions(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	comps := make([]*Competition, 0, len(s.world.Competitions))
	for _, c := range s.world.Competitions {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].ID < comps[j].ID })
	writeJSON(w, http.StatusOK, comps)
}

// tableRow is the standings read model served to clients.
type tableRow struct {
	Position int      `json:"position"`
	ClubID   int      `json:"club_id"`
	Club     string   `json:"club"`
	Played   int      `json:"played"`
	Won      int      `json:"won"`
	Drawn    int      `json:"drawn"`
	Lost     int      `json:"lost"`
	GF       int      `json:"goals_for"`
	GA       int      `json:"goals_against"`
	GD       int      `json:"goal_difference"`
	Points   int      `json:"points"`
	Form     []string `json:"form"`
}

func (s *apiServer) getCompetitionTable(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	comp := s.world.Competitions[pathInt(r, "id")]
	if comp == nil {
		writeError(w, http.StatusNotFound, "competition not found")
		return
	}
	table := s.world.sortedTable(comp)
	rows := make([]tableRow, len(table))
	for i, st := range table {
		rows[i] = tableRow{
			Position: i + 1,
			ClubID:   st.ClubID,
			Club:     s.world.clubName(st.ClubID),
			Played:   st.Played,
			Won:      st.Won,
			Drawn:    st.Drawn,
			Lost:     st.Lost,
			GF:       st.GoalsFor,
			GA:       st.GoalsAgainst,
			GD:       st.GoalDiff(),
			Points:   st.Points,
			Form:     st.Form,
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *apiServer) getCompetitionFixtures(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	id := pathInt(r, "id")
	if s.world.Competitions[id] == nil {
		writeError(w, http.StatusNotFound, "competition not found")
		return
	}
	writeJSON(w, http.StatusOK, s.filterFixtures(r, id))
}

func (s *apiServer) getFixtures(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.filterFixtures(r, 0))
}

// filterFixtures applies ?matchday= and ?status= filters. compID 0 means
// all competitions. Callers hold the read lock.
func (s *apiServer) filterFixtures(r *http.Request, compID int) []*Fixture {
	matchday, _ := strconv.Atoi(r.URL.Query().Get("matchday"))
	status := r.URL.Query().Get("status")

	fixtures := make([]*Fixture, 0)
	for _, f := range s.world.Fixtures {
		if compID != 0 && f.CompetitionID != compID {
			continue
		}
		if matchday != 0 && f.Matchday != matchday {
			continue
		}
		if status != "" && f.Status != status {
			continue
		}
		fixtures = append(fixtures, f)
	}
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].Matchday != fixtures[j].Matchday {
			return fixtures[i].Matchday < fixtures[j].Matchday
		}
		return fixtures[i].ID < fixtures[j].ID
	})
	return fixtures
}

func (s *apiServer) getSeason(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.CurrentSeasonStatus())
}

func (s *apiServer) getMatchHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.MatchHistory())
}

func (s *apiServer) getTransferHistory(w http.ResponseWriter, r *http.Request) {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.world.Transfers)
}

func (s *apiServer) getOffers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.PendingOffers())
}

func (s *apiServer) postOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID int   `json:"player_id"`
		Amount   int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.world.MakeOffer(req.PlayerID, req.Amount))
}

func (s *apiServer) acceptOffer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.RespondToOffer(mux.Vars(r)["id"], true))
}

func (s *apiServer) rejectOffer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.RespondToOffer(mux.Vars(r)["id"], false))
}

// postMatchResult accepts the externally simulated anchor match and drives
// the whole matchday from it.
func (s *apiServer) postMatchResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HomeID        int          `json:"home_id"`
		AwayID        int          `json:"away_id"`
		CompetitionID int          `json:"competition_id"`
		Result        *MatchResult `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Result == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.world.ProcessMatchResult(req.HomeID, req.AwayID, req.CompetitionID, req.Result); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.world.CurrentSeasonStatus())
}

// postSimulate plays forward up to ?count= matchdays using the built-in
// generator for the user's own match. Each matchday either completes whole
// or the loop stops; season completion also stops it.
func (s *apiServer) postSimulate(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if count < 1 {
		count = 1
	}
	if count > 50 {
		count = 50
	}

	type played struct {
		Fixture *Fixture     `json:"fixture"`
		Result  *MatchResult `json:"result"`
	}
	var out []played
	for i := 0; i < count; i++ {
		if s.world.CurrentSeasonStatus().Complete {
			break
		}
		fixture, result, err := s.world.PlayNextUserMatchday()
		if err != nil {
			if len(out) == 0 {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			break
		}
		out = append(out, played{Fixture: fixture, Result: result})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matchdays_played": len(out),
		"matches":          out,
		"season":           s.world.CurrentSeasonStatus(),
	})
}

func (s *apiServer) postRollover(w http.ResponseWriter, r *http.Request) {
	if err := s.world.RolloverSeason(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.world.CurrentSeasonStatus())
}

// routes builds the full router: a /api/v1 subrouter with typed path
// parameters.
func (s *apiServer) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", s.serveHomepage).Methods("GET")
	if s.hub != nil {
		router.HandleFunc("/ws", s.hub.handleWS)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.healthCheck).Methods("GET")
	api.HandleFunc("/stats", s.getStats).Methods("GET")
	api.HandleFunc("/warnings", s.getWarnings).Methods("GET")
	api.HandleFunc("/logs", s.getLogs).Methods("GET")
	api.HandleFunc("/news", s.getNews).Methods("GET")

	api.HandleFunc("/clubs", s.getClubs).Methods("GET")
	api.HandleFunc("/clubs/{id:[0-9]+}", s.getClub).Methods("GET")
	api.HandleFunc("/clubs/{id:[0-9]+}/squad", s.getClubSquad).Methods("GET")

	api.HandleFunc("/players", s.getPlayers).Methods("GET")
	api.HandleFunc("/players/{id:[0-9]+}", s.getPlayer).Methods("GET")

	api.HandleFunc("/competitions", s.getCompetitions).Methods("GET")
	api.HandleFunc("/competitions/{id:[0-9]+}/table", s.getCompetitionTable).Methods("GET")
	api.HandleFunc("/competitions/{id:[0-9]+}/fixtures", s.getCompetitionFixtures).Methods("GET")
	api.HandleFunc("/fixtures", s.getFixtures).Methods("GET")

	api.HandleFunc("/matches/history", s.getMatchHistory).Methods("GET")
	api.HandleFunc("/matches/result", s.postMatchResult).Methods("POST")
	api.HandleFunc("/matches/simulate", s.postSimulate).Methods("POST")

	api.HandleFunc("/transfers", s.getTransferHistory).Methods("GET")
	api.HandleFunc("/transfers/offers", s.getOffers).Methods("GET")
	api.HandleFunc("/transfers/offers", s.postOffer).Methods("POST")
	api.HandleFunc("/transfers/offers/{id}/accept", s.acceptOffer).Methods("POST")
	api.HandleFunc("/transfers/offers/{id}/reject", s.rejectOffer).Methods("POST")

	api.HandleFunc("/seasons/current", s.getSeason).Methods("GET")
	api.HandleFunc("/seasons/rollover", s.postRollover).Methods("POST")

	return router
}
