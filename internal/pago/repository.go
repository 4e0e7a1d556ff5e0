package pago

import (
	"gorm.io/gorm"
)

// Repository encapsula el acceso a datos de Pagos.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta un nuevo pago.
func (r *Repository) Create(p *Pago) error {
	return r.DB.Create(p).Error
}

// FindByID busca un pago por su ID.
func (r *Repository) FindByID(id uint) (*Pago, error) {
	var p Pago
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByOperacion devuelve los pagos de una operación ordenados por fecha.
func (r *Repository) ListByOperacion(operacionID uint) ([]Pago, error) {
	var list []Pago
	err := r.DB.Where("operacion_id = ?", operacionID).
		Order("fecha ASC").
		Find(&list).Error
	return list, err
}

// Update guarda todos los campos de un pago existente.
func (r *Repository) Update(p *Pago) error {
	return r.DB.Save(p).Error
}

// DeleteByID elimina el pago; gorm.ErrRecordNotFound si no existía.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&Pago{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
