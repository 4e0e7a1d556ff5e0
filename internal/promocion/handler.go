package promocion

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

// DTO usado en POST /promociones y PUT /promociones/{id}. Los porcentajes a
// cero en el alta toman los valores habituales (6/10/15/30/50/50).
type PromocionDTO struct {
	Nombre           string  `json:"nombre"`
	ComisionTotalPct float64 `json:"comisionTotalPct"`
	IvaPorcentaje    float64 `json:"ivaPorcentaje"`
	Hito1Pct         float64 `json:"hito1Pct"`
	Hito2Pct         float64 `json:"hito2Pct"`
	RepartoHito1     float64 `json:"repartoHito1"`
	RepartoHito2     float64 `json:"repartoHito2"`
}

func defaultPct(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// POST /promociones
func (h *Handler) Crear(w http.ResponseWriter, r *http.Request) {
	var in PromocionDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Nombre == "" {
		http.Error(w, "El nombre es obligatorio", http.StatusBadRequest)
		return
	}

	p := &Promocion{
		Nombre:           in.Nombre,
		ComisionTotalPct: defaultPct(in.ComisionTotalPct, 6.0),
		IvaPorcentaje:    defaultPct(in.IvaPorcentaje, 10.0),
		Hito1Pct:         defaultPct(in.Hito1Pct, 15.0),
		Hito2Pct:         defaultPct(in.Hito2Pct, 30.0),
		RepartoHito1:     defaultPct(in.RepartoHito1, 50.0),
		RepartoHito2:     defaultPct(in.RepartoHito2, 50.0),
	}
	if err := h.Repo.Create(p); err != nil {
		http.Error(w, "Error al crear la promoción", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// GET /promociones
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List()
	if err != nil {
		http.Error(w, "Error al listar promociones", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// GET /promociones/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de promoción inválido", http.StatusBadRequest)
		return
	}
	p, err := h.Repo.FindByIDConViviendas(uint(id))
	if err != nil {
		http.Error(w, "Promoción no encontrada", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// PUT /promociones/{id}
// Nota: un cambio de configuración no recalcula hitos por sí solo; el recálculo
// llega con la siguiente mutación de pagos o con POST /hitos/recalcular.
func (h *Handler) Actualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de promoción inválido", http.StatusBadRequest)
		return
	}

	p, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Promoción no encontrada", http.StatusNotFound)
		return
	}

	var in PromocionDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Nombre == "" {
		http.Error(w, "El nombre es obligatorio", http.StatusBadRequest)
		return
	}

	p.Nombre = in.Nombre
	p.ComisionTotalPct = defaultPct(in.ComisionTotalPct, 6.0)
	p.IvaPorcentaje = defaultPct(in.IvaPorcentaje, 10.0)
	p.Hito1Pct = defaultPct(in.Hito1Pct, 15.0)
	p.Hito2Pct = defaultPct(in.Hito2Pct, 30.0)
	p.RepartoHito1 = defaultPct(in.RepartoHito1, 50.0)
	p.RepartoHito2 = defaultPct(in.RepartoHito2, 50.0)
	if err := h.Repo.Update(p); err != nil {
		http.Error(w, "Error al actualizar la promoción", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// DELETE /promociones/{id}
// Regla: no se puede eliminar una promoción con viviendas dadas de alta.
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de promoción inválido", http.StatusBadRequest)
		return
	}

	count, err := h.Repo.CountViviendas(uint(id))
	if err != nil {
		http.Error(w, "Error al comprobar viviendas vinculadas", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "No se puede eliminar la promoción porque tiene viviendas dadas de alta", http.StatusConflict)
		return
	}

	if err := h.Repo.DeleteByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Promoción no encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al eliminar la promoción", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
