package promocion

import (
	"gorm.io/gorm"
)

// Repository encapsula el acceso a datos de Promociones.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta una nueva promoción.
func (r *Repository) Create(p *Promocion) error {
	return r.DB.Create(p).Error
}

// FindByID busca una promoción por su ID.
func (r *Repository) FindByID(id uint) (*Promocion, error) {
	var p Promocion
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDConViviendas busca una promoción con sus viviendas precargadas.
func (r *Repository) FindByIDConViviendas(id uint) (*Promocion, error) {
	var p Promocion
	if err := r.DB.Preload("Viviendas").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List devuelve todas las promociones ordenadas por nombre.
func (r *Repository) List() ([]Promocion, error) {
	var list []Promocion
	err := r.DB.Order("nombre ASC").Find(&list).Error
	return list, err
}

// Update guarda todos los campos de una promoción existente.
func (r *Repository) Update(p *Promocion) error {
	return r.DB.Save(p).Error
}

// CountViviendas cuenta las viviendas dadas de alta en la promoción.
func (r *Repository) CountViviendas(id uint) (int64, error) {
	var count int64
	err := r.DB.Table("viviendas").Where("promocion_id = ?", id).Count(&count).Error
	return count, err
}

// DeleteByID elimina la promoción; gorm.ErrRecordNotFound si no existía.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&Promocion{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
