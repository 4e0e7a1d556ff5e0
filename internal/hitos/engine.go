// Package hitos implementa el motor de recálculo de hitos de comisión.
//
// Dada una operación, el motor suma sus pagos, evalúa los umbrales de la
// promoción sobre el precio con IVA de la vivienda y garantiza la existencia
// de los tramos de comisión correspondientes. Reglas fijas:
//
//   - un tramo con factura emitida nunca cambia de importes;
//   - la facturabilidad, una vez concedida, no se revoca;
//   - cruzar un umbral nunca se deshace: borrar pagos no retrae tramos.
package hitos

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AltamarHomes/api-ventas/internal/operacion"
	"github.com/AltamarHomes/api-ventas/internal/tramocomision"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IVAServicios es el tipo fijo aplicado a las comisiones. Es el IVA de
// servicios profesionales, un régimen distinto del IVA del inmueble, por lo
// que no se deriva de la configuración de la promoción.
const IVAServicios = 0.21

var (
	// ErrOperacionNoEncontrada se devuelve cuando la operación no existe.
	ErrOperacionNoEncontrada = errors.New("operación no encontrada")
	// ErrDatosIncompletos se devuelve cuando la operación no tiene vivienda o
	// promoción resolubles; antes era un no-op silencioso, ahora se señala.
	ErrDatosIncompletos = errors.New("operación sin vivienda o promoción asociada")
)

// Service es el motor de hitos. Opera por operación, sin estado compartido
// fuera de la base de datos: operaciones distintas pueden recalcularse en
// paralelo.
type Service struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{DB: db, Logger: logger}
}

// round2 redondea a céntimos (medio céntimo hacia arriba). Los umbrales y el
// total pagado se comparan siempre redondeados para absorber el ruido de
// acumulación en coma flotante.
func round2(n float64) float64 {
	return math.Floor(n*100+0.5) / 100
}

// Recalcular evalúa los hitos de una operación y crea o refresca sus tramos.
// Es idempotente y se ejecuta completa dentro de una transacción: o se aplican
// todos los tramos de la pasada o ninguno.
func (s *Service) Recalcular(operacionID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.recalcular(tx, operacionID)
	})
}

func (s *Service) recalcular(tx *gorm.DB, operacionID uint) error {
	var op operacion.Operacion
	err := tx.
		Preload("Pagos").
		Preload("Promocion").
		Preload("Vivienda").
		First(&op, operacionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %d", ErrOperacionNoEncontrada, operacionID)
	}
	if err != nil {
		return err
	}
	if op.Vivienda.ID == 0 || op.Promocion.ID == 0 {
		return fmt.Errorf("%w: %d", ErrDatosIncompletos, operacionID)
	}

	var totalPagado float64
	for _, p := range op.Pagos {
		totalPagado += p.Importe
	}

	precio := op.Vivienda.PrecioSinIva
	precioConIva := precio * (1 + op.Promocion.IvaPorcentaje/100)

	hito1Val := round2(precioConIva * op.Promocion.Hito1Pct / 100)
	hito2Val := round2(precioConIva * op.Promocion.Hito2Pct / 100)
	totalRedondeado := round2(totalPagado)

	s.Logger.WithFields(logrus.Fields{
		"operacion": op.ID,
		"pagado":    totalRedondeado,
		"hito1":     hito1Val,
		"hito2":     hito2Val,
	}).Info("recalculando hitos")

	// Hito 1: primer tramo de la vendedora.
	if totalRedondeado >= hito1Val {
		base := precio * (op.Promocion.ComisionTotalPct / 100) * (op.Promocion.RepartoHito1 / 100)
		if err := s.ensureTramo(tx, op.ID, tramocomision.TipoVendedoraHito1, base); err != nil {
			return err
		}
	}

	// Hito 2: segundo tramo de la vendedora y, si procede, el del agente.
	if totalRedondeado >= hito2Val {
		base := precio * (op.Promocion.ComisionTotalPct / 100) * (op.Promocion.RepartoHito2 / 100)
		if err := s.ensureTramo(tx, op.ID, tramocomision.TipoVendedoraHito2, base); err != nil {
			return err
		}

		if op.AgenteID != nil && op.PctComisionAgente > 0 {
			baseAgente := precio * (op.PctComisionAgente / 100)
			if err := s.ensureTramo(tx, op.ID, tramocomision.TipoAgente, baseAgente); err != nil {
				return err
			}
		}
	}

	return nil
}

// ensureTramo garantiza un tramo (operación, tipo) con los importes dados.
// Si no existe lo crea facturable; si existe sin factura refresca importes y
// consolida la facturabilidad; si tiene factura no toca nada.
func (s *Service) ensureTramo(tx *gorm.DB, operacionID uint, tipo string, base float64) error {
	repo := tramocomision.NewRepository(tx)

	existente, err := repo.FindByOperacionYTipo(operacionID, tipo)
	if err != nil {
		return err
	}

	iva := base * IVAServicios
	ahora := time.Now()

	if existente == nil {
		s.Logger.WithFields(logrus.Fields{"operacion": operacionID, "tipo": tipo, "base": base}).
			Info("hito alcanzado, creando tramo")
		return repo.Create(&tramocomision.TramoComision{
			OperacionID:     operacionID,
			Tipo:            tipo,
			BaseImponible:   base,
			IVA:             iva,
			Facturable:      true,
			FechaFacturable: &ahora,
		})
	}

	// Con factura asociada los importes quedan congelados.
	if existente.Factura != nil {
		return nil
	}

	existente.BaseImponible = base
	existente.IVA = iva
	if !existente.Facturable {
		existente.Facturable = true
		existente.FechaFacturable = &ahora
	}
	return repo.Update(existente)
}

// RecalcularTodas recorre todas las operaciones recalculando sus hitos.
// Los fallos por operación se cuentan sin abortar el lote.
func (s *Service) RecalcularTodas() (procesadas, fallidas int, err error) {
	repo := operacion.NewRepository(s.DB)
	ids, err := repo.ListIDs()
	if err != nil {
		return 0, 0, err
	}

	for _, id := range ids {
		if err := s.Recalcular(id); err != nil {
			s.Logger.WithFields(logrus.Fields{"operacion": id}).WithError(err).
				Error("fallo al recalcular operación en lote")
			fallidas++
			continue
		}
		procesadas++
	}

	s.Logger.WithFields(logrus.Fields{"procesadas": procesadas, "fallidas": fallidas}).
		Info("recálculo masivo finalizado")
	return procesadas, fallidas, nil
}

// RecalcularPorVivienda recalcula los hitos de todas las operaciones de una
// vivienda; se invoca tras una edición de precio. Devuelve cuántas procesó.
func (s *Service) RecalcularPorVivienda(viviendaID uint) (int, error) {
	var ids []uint
	if err := s.DB.Model(&operacion.Operacion{}).
		Where("vivienda_id = ?", viviendaID).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	for i, id := range ids {
		if err := s.Recalcular(id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}
