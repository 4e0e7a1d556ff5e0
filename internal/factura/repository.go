package factura

import (
	"errors"

	"gorm.io/gorm"
)

// Repository encapsula el acceso a datos de Facturas.
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

// Create inserta una nueva factura.
func (r *Repository) Create(f *Factura) error {
	return r.DB.Create(f).Error
}

// FindByTramo busca la factura de un tramo. Devuelve (nil, nil) si no existe.
func (r *Repository) FindByTramo(tramoID uint) (*Factura, error) {
	var f Factura
	err := r.DB.Where("tramo_id = ?", tramoID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateEstado cambia el estado de una factura existente.
func (r *Repository) UpdateEstado(id uint, estado string) error {
	return r.DB.Model(&Factura{}).Where("id = ?", id).Update("estado", estado).Error
}

// Delete elimina la factura.
func (r *Repository) Delete(f *Factura) error {
	return r.DB.Delete(f).Error
}
