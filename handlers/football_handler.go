package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/prediction-league/services"
)

type FootballHandler struct {
	syncService services.FootballSyncService
}

func NewFootballHandler(syncService services.FootballSyncService) *FootballHandler {
	return &FootballHandler{syncService: syncService}
}

func (h *FootballHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": h.syncService.Status()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FootballHandler) SearchLeaguesHandler(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.syncService.SearchLeagues(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leagues": leagues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FootballHandler) ImportLeagueHandler(w http.ResponseWriter, r *http.Request) {
	var input services.ImportLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.LeagueID <= 0 || input.Season <= 0 {
		badRequestResponse(w, r, errors.New("league_id and season must be positive"))
		return
	}

	result, err := h.syncService.ImportLeague(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FootballHandler) SyncScoresHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	updated, err := h.syncService.SyncScores(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"updated": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompetitionStandingsHandler отдаёт таблицу реальной лиги; для непривязанного турнира groups пуст.
func (h *FootballHandler) CompetitionStandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.syncService.GetCompetitionStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if standings == nil {
		standings = &services.CompetitionStandings{Groups: []services.StandingGroupView{}}
	}

	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
