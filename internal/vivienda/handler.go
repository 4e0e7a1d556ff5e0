package vivienda

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Recalculador dispara el recálculo de hitos de todas las operaciones de una
// vivienda. Lo implementa el motor de hitos; un cambio de precio debe
// reflejarse en los tramos aún sin facturar.
type Recalculador interface {
	RecalcularPorVivienda(viviendaID uint) (int, error)
}

type Handler struct {
	Repo   *Repository
	Motor  Recalculador
	Logger *logrus.Logger
}

func NewHandler(db *gorm.DB, motor Recalculador, logger *logrus.Logger) *Handler {
	return &Handler{Repo: NewRepository(db), Motor: motor, Logger: logger}
}

// DTO usado en POST /promociones/{id}/viviendas. Con ID actualiza; sin ID crea.
type ViviendaDTO struct {
	ID           uint    `json:"id"`
	Codigo       string  `json:"codigo"`
	Nombre       string  `json:"nombre"`
	Planta       string  `json:"planta"`
	Letra        string  `json:"letra"`
	PrecioSinIva float64 `json:"precioSinIva"`
}

// GET /promociones/{id}/viviendas
func (h *Handler) ListarPorPromocion(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de promoción inválido", http.StatusBadRequest)
		return
	}
	list, err := h.Repo.ListByPromocion(uint(pid))
	if err != nil {
		http.Error(w, "Error al listar viviendas", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// POST /promociones/{id}/viviendas
// Alta o edición de una vivienda. Tras una edición se recalculan los hitos de
// todas sus operaciones para que el nuevo precio llegue a los tramos sin factura.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de promoción inválido", http.StatusBadRequest)
		return
	}

	var in ViviendaDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.Codigo == "" {
		http.Error(w, "El código de la vivienda es obligatorio", http.StatusBadRequest)
		return
	}

	if in.ID != 0 {
		v, err := h.Repo.FindByID(in.ID)
		if err != nil {
			http.Error(w, "Vivienda no encontrada", http.StatusNotFound)
			return
		}
		v.Codigo = in.Codigo
		v.Nombre = in.Nombre
		v.Planta = in.Planta
		v.Letra = in.Letra
		v.PrecioSinIva = in.PrecioSinIva
		if err := h.Repo.Update(v); err != nil {
			http.Error(w, "Error al actualizar la vivienda", http.StatusInternalServerError)
			return
		}

		n, err := h.Motor.RecalcularPorVivienda(v.ID)
		if err != nil {
			h.Logger.WithFields(logrus.Fields{"vivienda": v.ID}).WithError(err).
				Error("fallo al recalcular hitos tras editar vivienda")
			http.Error(w, "Vivienda actualizada pero falló el recálculo de hitos", http.StatusInternalServerError)
			return
		}
		h.Logger.WithFields(logrus.Fields{"vivienda": v.ID, "operaciones": n}).
			Info("hitos recalculados tras edición de vivienda")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
		return
	}

	existente, err := h.Repo.FindByCodigo(uint(pid), in.Codigo)
	if err != nil {
		http.Error(w, "Error al comprobar el código", http.StatusInternalServerError)
		return
	}
	if existente != nil {
		http.Error(w, "Ya existe una vivienda con ese código en la promoción", http.StatusConflict)
		return
	}

	v := &Vivienda{
		PromocionID:  uint(pid),
		Codigo:       in.Codigo,
		Nombre:       in.Nombre,
		Planta:       in.Planta,
		Letra:        in.Letra,
		PrecioSinIva: in.PrecioSinIva,
	}
	if err := h.Repo.Create(v); err != nil {
		http.Error(w, "Error al crear la vivienda", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}

// DELETE /promociones/{id}/viviendas/{vid}
// Regla: no se puede eliminar una vivienda con operaciones asociadas.
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	vid, err := strconv.Atoi(mux.Vars(r)["vid"])
	if err != nil {
		http.Error(w, "ID de vivienda inválido", http.StatusBadRequest)
		return
	}

	count, err := h.Repo.CountOperaciones(uint(vid))
	if err != nil {
		http.Error(w, "Error al comprobar operaciones vinculadas", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Error(w, "No se puede eliminar la vivienda porque tiene operaciones o ventas asociadas", http.StatusConflict)
		return
	}

	if err := h.Repo.DeleteByID(uint(vid)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Vivienda no encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al eliminar la vivienda", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
