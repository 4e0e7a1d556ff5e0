package facturacion

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

// GET /facturacion/pendientes[?promocionId=]
func (h *Handler) ListarPendientes(w http.ResponseWriter, r *http.Request) {
	var promocionID *uint
	if s := r.URL.Query().Get("promocionId"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "promocionId inválido", http.StatusBadRequest)
			return
		}
		u := uint(id)
		promocionID = &u
	}

	tramos, err := h.Service.ListarPendientes(promocionID)
	if err != nil {
		http.Error(w, "Error al cargar los tramos pendientes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tramos)
}

// POST /facturacion/validar
func (h *Handler) Validar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TramoIDs []uint `json:"tramoIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if len(payload.TramoIDs) == 0 {
		http.Error(w, "Debe indicar al menos un tramo", http.StatusBadRequest)
		return
	}

	count, err := h.Service.ValidarTramos(payload.TramoIDs)
	if err != nil {
		http.Error(w, "No se pudieron validar los registros", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"validados": count})
}

// POST /tramos/{id}/cobrar
func (h *Handler) MarcarCobrado(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de tramo inválido", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarcarCobrado(uint(id)); err != nil {
		if errors.Is(err, ErrTramoNoEncontrado) {
			http.Error(w, "Tramo no encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al marcar el tramo como cobrado", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /tramos/{id}/revertir
func (h *Handler) Revertir(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de tramo inválido", http.StatusBadRequest)
		return
	}

	if err := h.Service.Revertir(uint(id)); err != nil {
		if errors.Is(err, ErrTramoNoEncontrado) {
			http.Error(w, "Tramo no encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "No se pudo revertir el estado", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
