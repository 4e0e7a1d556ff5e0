package operacion

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AltamarHomes/api-ventas/internal/agente"
	"github.com/AltamarHomes/api-ventas/internal/cliente"
	"github.com/AltamarHomes/api-ventas/internal/vivienda"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Recalculador dispara el recálculo de hitos de una operación. Lo implementa
// el motor de hitos.
type Recalculador interface {
	Recalcular(operacionID uint) error
}

type Handler struct {
	Repo      *Repository
	Clientes  *cliente.Repository
	Viviendas *vivienda.Repository
	Agentes   *agente.Repository
	Motor     Recalculador
	Logger    *logrus.Logger
}

func NewHandler(db *gorm.DB, motor Recalculador, logger *logrus.Logger) *Handler {
	return &Handler{
		Repo:      NewRepository(db),
		Clientes:  cliente.NewRepository(db),
		Viviendas: vivienda.NewRepository(db),
		Agentes:   agente.NewRepository(db),
		Motor:     motor,
		Logger:    logger,
	}
}

// DTO usado en POST /operaciones. El cliente se vincula o se crea por NIF;
// la vivienda se resuelve por código dentro de la promoción.
type OperacionCreateDTO struct {
	NombreCliente  string `json:"nombreCliente"`
	NifPasaporte   string `json:"nifPasaporte"`
	Email          string `json:"email"`
	Telefono       string `json:"telefono"`
	PromocionID    uint   `json:"promocionId"`
	ViviendaCodigo string `json:"viviendaCodigo"`
	AgenteID       *uint  `json:"agenteId"`
}

// DTO usado en PUT /operaciones/{id}. Permite cambiar el agente y su
// porcentaje (snapshot) y el estado.
type OperacionUpdateDTO struct {
	AgenteID          *uint    `json:"agenteId"`
	PctComisionAgente *float64 `json:"pctComisionAgente"`
	Estado            string   `json:"estado"`
}

// POST /operaciones
func (h *Handler) Crear(w http.ResponseWriter, r *http.Request) {
	var in OperacionCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if in.NombreCliente == "" || in.NifPasaporte == "" || in.PromocionID == 0 || in.ViviendaCodigo == "" {
		http.Error(w, "Faltan campos obligatorios (cliente, NIF, promoción y vivienda)", http.StatusBadRequest)
		return
	}

	// 1. Vincular o crear el cliente por NIF.
	c := &cliente.Cliente{
		Nombre:       in.NombreCliente,
		NifPasaporte: in.NifPasaporte,
		Email:        in.Email,
		Telefono:     in.Telefono,
	}
	if err := h.Clientes.UpsertByNif(nil, c); err != nil {
		http.Error(w, "Error al vincular el cliente", http.StatusInternalServerError)
		return
	}

	// 2. Resolver la vivienda por código dentro de la promoción.
	v, err := h.Viviendas.FindByCodigo(in.PromocionID, in.ViviendaCodigo)
	if err != nil {
		http.Error(w, "Error al buscar la vivienda", http.StatusInternalServerError)
		return
	}
	if v == nil {
		http.Error(w, "No se encuentra la vivienda en la promoción seleccionada", http.StatusNotFound)
		return
	}

	// 3. Una vivienda solo admite una operación ACTIVA.
	ocupada, err := h.Repo.ExisteActivaPorVivienda(v.ID)
	if err != nil {
		http.Error(w, "Error al comprobar la vivienda", http.StatusInternalServerError)
		return
	}
	if ocupada {
		http.Error(w, "Esta vivienda ya tiene una operación activa", http.StatusConflict)
		return
	}

	// 4. Snapshot de la comisión del agente en el momento del alta.
	var pctAgente float64
	if in.AgenteID != nil {
		a, err := h.Agentes.FindByID(*in.AgenteID)
		if err != nil {
			http.Error(w, "Agente no encontrado", http.StatusNotFound)
			return
		}
		pctAgente = a.ComisionBasePct
	}

	o := &Operacion{
		Estado:            EstadoActiva,
		FechaInicio:       time.Now(),
		ClienteID:         c.ID,
		PromocionID:       in.PromocionID,
		ViviendaID:        v.ID,
		AgenteID:          in.AgenteID,
		PctComisionAgente: pctAgente,
	}
	if err := h.Repo.Create(o); err != nil {
		http.Error(w, "Error al crear la operación", http.StatusInternalServerError)
		return
	}

	h.Logger.WithFields(logrus.Fields{"operacion": o.ID, "vivienda": v.ID}).
		Info("operación creada, inicializando hitos")

	if err := h.Motor.Recalcular(o.ID); err != nil {
		h.Logger.WithFields(logrus.Fields{"operacion": o.ID}).WithError(err).
			Error("fallo al inicializar hitos de la operación")
		http.Error(w, "Operación creada pero falló la inicialización de hitos", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(o)
}

// GET /operaciones[?promocionId=&estado=]
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	var promocionID uint
	if s := r.URL.Query().Get("promocionId"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "promocionId inválido", http.StatusBadRequest)
			return
		}
		promocionID = uint(id)
	}
	estado := r.URL.Query().Get("estado")

	list, err := h.Repo.List(promocionID, estado)
	if err != nil {
		http.Error(w, "Error al listar operaciones", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// GET /operaciones/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de operación inválido", http.StatusBadRequest)
		return
	}
	o, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Operación no encontrada", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(o)
}

// PUT /operaciones/{id}
// Cambios de agente o de su porcentaje disparan un recálculo para que el
// tramo AGENTE sin facturar refleje la nueva configuración.
func (h *Handler) Actualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de operación inválido", http.StatusBadRequest)
		return
	}

	o, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Operación no encontrada", http.StatusNotFound)
		return
	}

	var in OperacionUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	if in.Estado != "" {
		if in.Estado != EstadoActiva && in.Estado != EstadoCancelada {
			http.Error(w, "Estado inválido. Use 'ACTIVA' o 'CANCELADA'", http.StatusBadRequest)
			return
		}
		o.Estado = in.Estado
	}
	if in.AgenteID != nil {
		if *in.AgenteID == 0 {
			o.AgenteID = nil
			o.Agente = nil
			o.PctComisionAgente = 0
		} else {
			a, err := h.Agentes.FindByID(*in.AgenteID)
			if err != nil {
				http.Error(w, "Agente no encontrado", http.StatusNotFound)
				return
			}
			o.AgenteID = in.AgenteID
			o.Agente = nil
			if in.PctComisionAgente == nil {
				o.PctComisionAgente = a.ComisionBasePct
			}
		}
	}
	if in.PctComisionAgente != nil {
		o.PctComisionAgente = *in.PctComisionAgente
	}

	if err := h.Repo.Update(o); err != nil {
		http.Error(w, "Error al actualizar la operación", http.StatusInternalServerError)
		return
	}

	if err := h.Motor.Recalcular(o.ID); err != nil {
		h.Logger.WithFields(logrus.Fields{"operacion": o.ID}).WithError(err).
			Error("fallo al recalcular hitos tras actualizar operación")
		http.Error(w, "Operación actualizada pero falló el recálculo de hitos", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(o)
}

// POST /operaciones/{id}/cancelar
func (h *Handler) Cancelar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de operación inválido", http.StatusBadRequest)
		return
	}
	if err := h.Repo.Cancelar(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Operación no encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al cancelar la operación", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /operaciones/{id}
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de operación inválido", http.StatusBadRequest)
		return
	}
	if err := h.Repo.DeleteEnCascada(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Operación no encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al eliminar la operación", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
