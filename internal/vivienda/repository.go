package vivienda

import (
	"errors"

	"gorm.io/gorm"
)

// Repository encapsula el acceso a datos de Viviendas.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta una nueva vivienda.
func (r *Repository) Create(v *Vivienda) error {
	return r.DB.Create(v).Error
}

// FindByID busca una vivienda por su ID.
func (r *Repository) FindByID(id uint) (*Vivienda, error) {
	var v Vivienda
	if err := r.DB.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByCodigo busca la vivienda de una promoción por su código.
// Devuelve (nil, nil) si no existe.
func (r *Repository) FindByCodigo(promocionID uint, codigo string) (*Vivienda, error) {
	var v Vivienda
	err := r.DB.Where("promocion_id = ? AND codigo = ?", promocionID, codigo).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByPromocion devuelve las viviendas de una promoción ordenadas por código.
func (r *Repository) ListByPromocion(promocionID uint) ([]Vivienda, error) {
	var list []Vivienda
	err := r.DB.Where("promocion_id = ?", promocionID).
		Order("codigo ASC").
		Find(&list).Error
	return list, err
}

// Update guarda todos los campos de una vivienda existente.
func (r *Repository) Update(v *Vivienda) error {
	return r.DB.Save(v).Error
}

// CountOperaciones cuenta las operaciones que referencian a la vivienda.
func (r *Repository) CountOperaciones(id uint) (int64, error) {
	var count int64
	err := r.DB.Table("operaciones").Where("vivienda_id = ?", id).Count(&count).Error
	return count, err
}

// DeleteByID elimina la vivienda; gorm.ErrRecordNotFound si no existía.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&Vivienda{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
