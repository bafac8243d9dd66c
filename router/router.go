package router

import (
	"database/sql"
	"net/http"

	deck "presodeck/internal/deck"
	"presodeck/internal/deck/repository"
	"presodeck/internal/deck/service"
	"presodeck/middleware"
	"presodeck/socket"

	"github.com/gorilla/mux"
)

func Setup(db *sql.DB, hub *socket.Hub) http.Handler {
	r := mux.NewRouter()

	// WebSocket
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		socket.ServeWs(hub, w, req)
	})

	// REST API
	deckRepo := repository.NewDeckRepository(db)
	deckService := service.NewDeckService(deckRepo)
	deckHandler := deck.NewDeckHandler(deckService)

	r.HandleFunc("/api/presentations", deckHandler.CreateDeck).Methods(http.MethodPost)
	r.HandleFunc("/api/presentations", deckHandler.ListDecks).Methods(http.MethodGet)
	r.HandleFunc("/api/presentations/{slug}/snapshot", deckHandler.GetSnapshot).Methods(http.MethodGet)

	return middleware.CORSMiddleware(r)
}
