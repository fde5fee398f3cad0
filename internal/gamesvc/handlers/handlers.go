package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"
	"github.com/tamru/sequence-services/internal/gamesvc/room"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	registry  *room.Registry
}

func NewHandler(registry *room.Registry) *Handler {
	return &Handler{registry: registry}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "game service is running at port " + os.Getenv("GAME_SERVICE_PORT"),
		Code:    200,
		Data: map[string]interface{}{
			"rooms": h.registry.Count(),
		},
	}
	json.NewEncoder(w).Encode(rsp)
}
