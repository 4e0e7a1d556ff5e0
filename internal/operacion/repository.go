package operacion

import (
	"github.com/AltamarHomes/api-ventas/internal/factura"
	"github.com/AltamarHomes/api-ventas/internal/pago"
	"github.com/AltamarHomes/api-ventas/internal/tramocomision"
	"gorm.io/gorm"
)

// Repository encapsula el acceso a datos de Operaciones.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta una nueva operación.
func (r *Repository) Create(o *Operacion) error {
	return r.DB.Create(o).Error
}

// FindByID busca una operación con todas sus relaciones precargadas.
func (r *Repository) FindByID(id uint) (*Operacion, error) {
	var o Operacion
	err := r.DB.
		Preload("Cliente").
		Preload("Promocion").
		Preload("Vivienda").
		Preload("Agente").
		Preload("Pagos").
		Preload("Tramos").
		Preload("Tramos.Factura").
		First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List devuelve las operaciones, opcionalmente filtradas por promoción y estado.
func (r *Repository) List(promocionID uint, estado string) ([]Operacion, error) {
	q := r.DB.
		Preload("Cliente").
		Preload("Promocion").
		Preload("Vivienda").
		Preload("Agente")
	if promocionID != 0 {
		q = q.Where("promocion_id = ?", promocionID)
	}
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	var list []Operacion
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

// ListIDs devuelve los IDs de todas las operaciones (para recálculo masivo).
func (r *Repository) ListIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&Operacion{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// ExisteActivaPorVivienda comprueba si la vivienda ya tiene una operación ACTIVA.
func (r *Repository) ExisteActivaPorVivienda(viviendaID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&Operacion{}).
		Where("vivienda_id = ? AND estado = ?", viviendaID, EstadoActiva).
		Count(&count).Error
	return count > 0, err
}

// Update guarda todos los campos de una operación existente.
func (r *Repository) Update(o *Operacion) error {
	return r.DB.Save(o).Error
}

// Cancelar pasa la operación a CANCELADA (baja lógica); los pagos y tramos se
// conservan. gorm.ErrRecordNotFound si no existía.
func (r *Repository) Cancelar(id uint) error {
	res := r.DB.Model(&Operacion{}).Where("id = ?", id).Update("estado", EstadoCancelada)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteEnCascada elimina la operación y todo lo que cuelga de ella (facturas,
// tramos y pagos) en una única transacción.
func (r *Repository) DeleteEnCascada(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var tramoIDs []uint
		if err := tx.Model(&tramocomision.TramoComision{}).
			Where("operacion_id = ?", id).
			Pluck("id", &tramoIDs).Error; err != nil {
			return err
		}

		if len(tramoIDs) > 0 {
			if err := tx.Where("tramo_id IN ?", tramoIDs).Delete(&factura.Factura{}).Error; err != nil {
				return err
			}
			if err := tx.Where("operacion_id = ?", id).Delete(&tramocomision.TramoComision{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("operacion_id = ?", id).Delete(&pago.Pago{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&Operacion{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
