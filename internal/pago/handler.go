package pago

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Recalculador dispara el recálculo de hitos de una operación. Lo implementa
// el motor de hitos; se inyecta para no acoplar el libro de pagos al motor.
type Recalculador interface {
	Recalcular(operacionID uint) error
}

type Handler struct {
	Repo   *Repository
	Motor  Recalculador
	Logger *logrus.Logger
}

func NewHandler(db *gorm.DB, motor Recalculador, logger *logrus.Logger) *Handler {
	return &Handler{Repo: NewRepository(db), Motor: motor, Logger: logger}
}

// DTO usado en POST /operaciones/{id}/pagos y PUT /pagos/{id}
type PagoDTO struct {
	Importe    float64   `json:"importe"`
	Fecha      time.Time `json:"fecha"`
	Metodo     string    `json:"metodo"`
	Referencia string    `json:"referencia"`
}

// validar rechaza la entrada antes de cualquier escritura: importe positivo y
// finito, fecha obligatoria.
func (in *PagoDTO) validar() string {
	if math.IsNaN(in.Importe) || math.IsInf(in.Importe, 0) || in.Importe <= 0 {
		return "El importe debe ser un número válido mayor que 0"
	}
	if in.Fecha.IsZero() {
		return "La fecha del pago es obligatoria"
	}
	return ""
}

// POST /operaciones/{id}/pagos
func (h *Handler) Registrar(w http.ResponseWriter, r *http.Request) {
	opID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de operación inválido", http.StatusBadRequest)
		return
	}

	var in PagoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if msg := in.validar(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if in.Metodo == "" {
		in.Metodo = "Manual"
	}

	p := &Pago{
		OperacionID: uint(opID),
		Importe:     in.Importe,
		Fecha:       in.Fecha,
		Metodo:      in.Metodo,
		Referencia:  in.Referencia,
	}
	if err := h.Repo.Create(p); err != nil {
		http.Error(w, "Error al registrar el pago", http.StatusInternalServerError)
		return
	}

	h.Logger.WithFields(logrus.Fields{"operacion": opID, "pago": p.ID, "importe": p.Importe}).
		Info("pago registrado, recalculando hitos")

	// El pago ya está confirmado; si el recálculo falla, el fallo se propaga
	// al llamante, que debe tratarlo como fallo de la mutación completa.
	if err := h.Motor.Recalcular(uint(opID)); err != nil {
		h.Logger.WithFields(logrus.Fields{"operacion": opID}).WithError(err).
			Error("fallo al recalcular hitos tras registrar pago")
		http.Error(w, "Pago registrado pero falló el recálculo de hitos", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// PUT /pagos/{id}
func (h *Handler) Editar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de pago inválido", http.StatusBadRequest)
		return
	}

	p, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Pago no encontrado", http.StatusNotFound)
		return
	}

	var in PagoDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if msg := in.validar(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if in.Metodo == "" {
		in.Metodo = "Manual"
	}

	p.Importe = in.Importe
	p.Fecha = in.Fecha
	p.Metodo = in.Metodo
	p.Referencia = in.Referencia
	if err := h.Repo.Update(p); err != nil {
		http.Error(w, "Error al actualizar el pago", http.StatusInternalServerError)
		return
	}

	if err := h.Motor.Recalcular(p.OperacionID); err != nil {
		h.Logger.WithFields(logrus.Fields{"operacion": p.OperacionID}).WithError(err).
			Error("fallo al recalcular hitos tras editar pago")
		http.Error(w, "Pago actualizado pero falló el recálculo de hitos", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// DELETE /pagos/{id}
// Borrar un pago no retrae tramos ya creados: el motor nunca revierte un hito
// cruzado (regla de negocio, ver internal/hitos).
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de pago inválido", http.StatusBadRequest)
		return
	}

	p, err := h.Repo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Pago no encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al buscar el pago", http.StatusInternalServerError)
		return
	}

	if err := h.Repo.DeleteByID(uint(id)); err != nil {
		http.Error(w, "Error al eliminar el pago", http.StatusInternalServerError)
		return
	}

	if err := h.Motor.Recalcular(p.OperacionID); err != nil {
		h.Logger.WithFields(logrus.Fields{"operacion": p.OperacionID}).WithError(err).
			Error("fallo al recalcular hitos tras eliminar pago")
		http.Error(w, "Pago eliminado pero falló el recálculo de hitos", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
