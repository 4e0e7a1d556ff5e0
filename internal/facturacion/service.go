// Package facturacion implementa el flujo de validación, cobro y reversión de
// tramos de comisión sobre los registros que produce el motor de hitos.
package facturacion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AltamarHomes/api-ventas/internal/factura"
	"github.com/AltamarHomes/api-ventas/internal/tramocomision"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PrefijoLiquidacion identifica las facturas sintéticas generadas al confirmar
// un cobro sin factura real previa. Al revertir, estas se borran; las de
// numeración real se anulan.
const PrefijoLiquidacion = "LIQ-CONF-"

// ErrTramoNoEncontrado se devuelve cuando el tramo referenciado no existe.
var ErrTramoNoEncontrado = errors.New("tramo no encontrado")

type Service struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{DB: db, Logger: logger}
}

// ValidarTramos marca los tramos indicados como validados para facturación en
// un único UPDATE por lotes. Devuelve cuántas filas cambió; los IDs
// inexistentes simplemente no cuentan.
func (s *Service) ValidarTramos(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.DB.Model(&tramocomision.TramoComision{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"validado":         true,
			"fecha_validacion": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}

	s.Logger.WithFields(logrus.Fields{"solicitados": len(ids), "validados": res.RowsAffected}).
		Info("tramos validados para facturación")
	return res.RowsAffected, nil
}

// MarcarCobrado confirma el cobro de un tramo. Si ya tiene factura, esta pasa
// a COBRADA; si no, se crea una liquidación sintética directamente en COBRADA
// (sin pasar por EMITIDA).
func (s *Service) MarcarCobrado(tramoID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		tramos := tramocomision.NewRepository(tx)
		if _, err := tramos.FindByID(tramoID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", ErrTramoNoEncontrado, tramoID)
			}
			return err
		}

		facturas := factura.NewRepository(tx)
		f, err := facturas.FindByTramo(tramoID)
		if err != nil {
			return err
		}

		if f != nil {
			return facturas.UpdateEstado(f.ID, factura.EstadoCobrada)
		}

		nueva := &factura.Factura{
			TramoID:      tramoID,
			Numero:       fmt.Sprintf("%s%d", PrefijoLiquidacion, time.Now().Unix()),
			FechaEmision: time.Now(),
			Estado:       factura.EstadoCobrada,
		}
		if err := facturas.Create(nueva); err != nil {
			return err
		}
		s.Logger.WithFields(logrus.Fields{"tramo": tramoID, "numero": nueva.Numero}).
			Info("liquidación sintética creada como cobrada")
		return nil
	})
}

// Revertir deshace la validación/cobro de un tramo en una única transacción:
// desvalida el tramo y, si hay factura, la borra (liquidación sintética) o la
// anula (factura con numeración real). Así nunca queda un tramo desvalidado
// con una factura que siga constando como cobrada.
func (s *Service) Revertir(tramoID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&tramocomision.TramoComision{}).
			Where("id = ?", tramoID).
			Updates(map[string]interface{}{
				"validado":         false,
				"fecha_validacion": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %d", ErrTramoNoEncontrado, tramoID)
		}

		facturas := factura.NewRepository(tx)
		f, err := facturas.FindByTramo(tramoID)
		if err != nil {
			return err
		}
		if f == nil {
			return nil
		}

		if strings.HasPrefix(f.Numero, PrefijoLiquidacion) {
			s.Logger.WithFields(logrus.Fields{"tramo": tramoID, "numero": f.Numero}).
				Info("borrada liquidación sintética al revertir")
			return facturas.Delete(f)
		}

		s.Logger.WithFields(logrus.Fields{"tramo": tramoID, "numero": f.Numero}).
			Info("anulada factura real al revertir")
		return facturas.UpdateEstado(f.ID, factura.EstadoAnulada)
	})
}

// TramoPendiente es la fila del listado de facturación: el tramo más los
// datos de presentación de su operación.
type TramoPendiente struct {
	ID              uint       `json:"id"`
	Tipo            string     `json:"tipo"`
	BaseImponible   float64    `json:"baseImponible"`
	IVA             float64    `json:"iva"`
	FechaFacturable *time.Time `json:"fechaFacturable,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	OperacionID    uint   `json:"operacionId"`
	Cliente        string `json:"cliente"`
	PromocionID    uint   `json:"promocionId"`
	Promocion      string `json:"promocion"`
	ViviendaCodigo string `json:"viviendaCodigo"`
	ViviendaPlanta string `json:"viviendaPlanta"`
	ViviendaLetra  string `json:"viviendaLetra"`
	Agente         string `json:"agente,omitempty"`
}

// ListarPendientes devuelve los tramos facturables aún sin validar, limitados
// a los tipos conocidos y ordenados por actualización más reciente. Con
// promocionID distinto de nil filtra por promoción.
func (s *Service) ListarPendientes(promocionID *uint) ([]TramoPendiente, error) {
	q := s.DB.Table("tramos_comision AS t").
		Select(`t.id, t.tipo, t.base_imponible, t.iva, t.fecha_facturable, t.updated_at,
			o.id AS operacion_id, c.nombre AS cliente,
			p.id AS promocion_id, p.nombre AS promocion,
			v.codigo AS vivienda_codigo, v.planta AS vivienda_planta, v.letra AS vivienda_letra,
			COALESCE(a.nombre, '') AS agente`).
		Joins("JOIN operaciones o ON o.id = t.operacion_id").
		Joins("JOIN clientes c ON c.id = o.cliente_id").
		Joins("JOIN promociones p ON p.id = o.promocion_id").
		Joins("JOIN viviendas v ON v.id = o.vivienda_id").
		Joins("LEFT JOIN agentes a ON a.id = o.agente_id").
		Where("t.facturable = ? AND t.validado = ?", true, false).
		Where("t.tipo IN ?", tramocomision.TiposConocidos()).
		Order("t.updated_at DESC")

	if promocionID != nil {
		q = q.Where("p.id = ?", *promocionID)
	}

	var rows []TramoPendiente
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
