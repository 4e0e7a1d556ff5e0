package tramocomision

import (
	"errors"

	"gorm.io/gorm"
)

// Repository encapsula el acceso a datos de Tramos de Comisión.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB devuelve una copia del repo usando un *gorm.DB concreto (ej.: tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

// Create inserta un nuevo tramo.
func (r *Repository) Create(t *TramoComision) error {
	return r.DB.Create(t).Error
}

// FindByID busca un tramo por su ID, con su factura precargada.
func (r *Repository) FindByID(id uint) (*TramoComision, error) {
	var t TramoComision
	if err := r.DB.Preload("Factura").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByOperacionYTipo busca el tramo de una operación y tipo concretos,
// con su factura precargada. Devuelve (nil, nil) si no existe.
func (r *Repository) FindByOperacionYTipo(operacionID uint, tipo string) (*TramoComision, error) {
	var t TramoComision
	err := r.DB.Preload("Factura").
		Where("operacion_id = ? AND tipo = ?", operacionID, tipo).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByOperacion devuelve todos los tramos de una operación.
func (r *Repository) ListByOperacion(operacionID uint) ([]TramoComision, error) {
	var list []TramoComision
	err := r.DB.Preload("Factura").
		Where("operacion_id = ?", operacionID).
		Order("tipo ASC").
		Find(&list).Error
	return list, err
}

// Update guarda todos los campos de un tramo existente.
func (r *Repository) Update(t *TramoComision) error {
	return r.DB.Save(t).Error
}
