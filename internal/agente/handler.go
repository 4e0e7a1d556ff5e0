package agente

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{Repo: NewRepository(db)}
}

// DTO usado en POST /agentes y PUT /agentes/{id}
type AgenteDTO struct {
	Nombre          string  `json:"nombre"`
	Email           string  `json:"email"`
	Telefono        string  `json:"telefono"`
	ComisionBasePct float64 `json:"comisionBasePct"`
}

// POST /agentes
func (h *Handler) Crear(w http.ResponseWriter, r *http.Request) {
	var in AgenteDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Nombre == "" {
		http.Error(w, "El nombre es obligatorio", http.StatusBadRequest)
		return
	}

	a := &Agente{
		Nombre:          in.Nombre,
		Email:           in.Email,
		Telefono:        in.Telefono,
		ComisionBasePct: in.ComisionBasePct,
	}
	if err := h.Repo.Create(a); err != nil {
		http.Error(w, "Error al crear el agente", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(a)
}

// GET /agentes
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List()
	if err != nil {
		http.Error(w, "Error al listar agentes", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// GET /agentes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de agente inválido", http.StatusBadRequest)
		return
	}
	a, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Agente no encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a)
}

// PUT /agentes/{id}
func (h *Handler) Actualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de agente inválido", http.StatusBadRequest)
		return
	}

	a, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Agente no encontrado", http.StatusNotFound)
		return
	}

	var in AgenteDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Nombre == "" {
		http.Error(w, "El nombre es obligatorio", http.StatusBadRequest)
		return
	}

	a.Nombre = in.Nombre
	a.Email = in.Email
	a.Telefono = in.Telefono
	a.ComisionBasePct = in.ComisionBasePct
	if err := h.Repo.Update(a); err != nil {
		http.Error(w, "Error al actualizar el agente", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a)
}

// DELETE /agentes/{id}
// Regla: no se puede eliminar un agente con operaciones vinculadas.
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de agente inválido", http.StatusBadRequest)
		return
	}

	count, err := h.Repo.CountOperaciones(uint(id))
	if err != nil {
		http.Error(w, "Error al comprobar operaciones vinculadas", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "No se puede eliminar el agente porque tiene operaciones asociadas", http.StatusConflict)
		return
	}

	if err := h.Repo.DeleteByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Agente no encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al eliminar el agente", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
