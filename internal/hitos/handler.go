package hitos

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// POST /hitos/recalcular
// Recálculo administrativo de todas las operaciones.
func (h *Handler) RecalcularTodas(w http.ResponseWriter, r *http.Request) {
	procesadas, fallidas, err := h.Service.RecalcularTodas()
	if err != nil {
		http.Error(w, "Error al lanzar el recálculo masivo", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{
		"procesadas": procesadas,
		"fallidas":   fallidas,
	})
}

// POST /operaciones/{id}/recalcular
func (h *Handler) Recalcular(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de operación inválido", http.StatusBadRequest)
		return
	}

	if err := h.Service.Recalcular(uint(id)); err != nil {
		if errors.Is(err, ErrOperacionNoEncontrada) {
			http.Error(w, "Operación no encontrada", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrDatosIncompletos) {
			http.Error(w, "La operación no tiene vivienda o promoción asociada", http.StatusConflict)
			return
		}
		http.Error(w, "Error al recalcular los hitos", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
