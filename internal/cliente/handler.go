package cliente

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

// DTO usado en POST /clientes y PUT /clientes/{id}
type ClienteDTO struct {
	Nombre       string `json:"nombre"`
	NifPasaporte string `json:"nifPasaporte"`
	Email        string `json:"email"`
	Telefono     string `json:"telefono"`
}

// POST /clientes
func (h *Handler) Crear(w http.ResponseWriter, r *http.Request) {
	var in ClienteDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Nombre == "" || in.NifPasaporte == "" {
		http.Error(w, "El nombre y el NIF son obligatorios", http.StatusBadRequest)
		return
	}

	existente, err := h.Repo.FindByNif(in.NifPasaporte)
	if err != nil {
		http.Error(w, "Error al comprobar el NIF", http.StatusInternalServerError)
		return
	}
	if existente != nil {
		http.Error(w, "Ya existe un cliente con este NIF/Pasaporte", http.StatusConflict)
		return
	}

	c := &Cliente{
		Nombre:       in.Nombre,
		NifPasaporte: in.NifPasaporte,
		Email:        in.Email,
		Telefono:     in.Telefono,
	}
	if err := h.Repo.Create(c); err != nil {
		http.Error(w, "Error al crear el cliente", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// GET /clientes
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List()
	if err != nil {
		http.Error(w, "Error al listar clientes", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// GET /clientes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Cliente no encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// PUT /clientes/{id}
func (h *Handler) Actualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Cliente no encontrado", http.StatusNotFound)
		return
	}

	var in ClienteDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Nombre == "" || in.NifPasaporte == "" {
		http.Error(w, "El nombre y el NIF son obligatorios", http.StatusBadRequest)
		return
	}

	enUso, err := h.Repo.NifEnUsoPorOtro(in.NifPasaporte, c.ID)
	if err != nil {
		http.Error(w, "Error al comprobar el NIF", http.StatusInternalServerError)
		return
	}
	if enUso {
		http.Error(w, "Ya existe otro cliente con este NIF/Pasaporte", http.StatusConflict)
		return
	}

	c.Nombre = in.Nombre
	c.NifPasaporte = in.NifPasaporte
	c.Email = in.Email
	c.Telefono = in.Telefono
	if err := h.Repo.Update(c); err != nil {
		http.Error(w, "Error al actualizar el cliente", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// DELETE /clientes/{id}
// Regla: no se puede eliminar un cliente con operaciones vinculadas.
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	count, err := h.Repo.CountOperaciones(uint(id))
	if err != nil {
		http.Error(w, "Error al comprobar operaciones vinculadas", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "No se puede eliminar el cliente porque tiene operaciones asociadas", http.StatusConflict)
		return
	}

	if err := h.Repo.DeleteByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Cliente no encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al eliminar el cliente", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
