package deck

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"presodeck/internal/deck/model"
	"presodeck/internal/deck/service"
	"presodeck/pkg/logger"

	"github.com/gorilla/mux"
)

type DeckHandler struct {
	Service *service.DeckService
}

func NewDeckHandler(service *service.DeckService) *DeckHandler {
	return &DeckHandler{Service: service}
}

func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDeckRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // Ignore error, default to empty

	preso, err := h.Service.CreateDeck(req.Title)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to create deck: %v", err)
		http.Error(w, "Failed to create presentation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(preso)
}

func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.Service.ListDecks()
	if err != nil {
		logger.Sugar.Errorf("Error fetching presentations: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if decks == nil {
		decks = []model.Presentation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decks)
}

func (h *DeckHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if slug == "" {
		http.Error(w, "Missing slug", http.StatusBadRequest)
		return
	}

	snap, err := h.Service.GetSnapshot(slug)
	if err == sql.ErrNoRows {
		http.Error(w, "Presentation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Error building snapshot for %s: %v", slug, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
