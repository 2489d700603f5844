package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/prediction-league/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{gameService: gs}
}

type resultRequest struct {
	HomeGoals *int `json:"home_goals"`
	AwayGoals *int `json:"away_goals"`
}

func (h *GameHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, gameID, ok := tournamentAndGameIDs(w, r)
	if !ok {
		return
	}

	game, err := h.gameService.GetGame(r.Context(), tournamentID, gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/tournaments/%d/games/%d", tournamentID, game.ID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, gameID, ok := tournamentAndGameIDs(w, r)
	if !ok {
		return
	}

	var input services.GameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.UpdateGame(r.Context(), tournamentID, gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, gameID, ok := tournamentAndGameIDs(w, r)
	if !ok {
		return
	}

	if err := h.gameService.DeleteGame(r.Context(), tournamentID, gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) SetResultHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.HomeGoals == nil || input.AwayGoals == nil {
		badRequestResponse(w, r, errors.New("home_goals and away_goals are required"))
		return
	}

	game, err := h.gameService.SetResult(r.Context(), gameID, *input.HomeGoals, *input.AwayGoals)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if game == nil {
		errorResponse(w, r, http.StatusBadRequest, "Game not found or has not started yet.")
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func tournamentAndGameIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return tournamentID, gameID, true
}
