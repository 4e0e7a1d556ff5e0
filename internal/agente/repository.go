package agente

import (
	"gorm.io/gorm"
)

// Repository encapsula el acceso a datos de Agentes.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(a *Agente) error {
	return r.DB.Create(a).Error
}

func (r *Repository) FindByID(id uint) (*Agente, error) {
	var a Agente
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List devuelve todos los agentes ordenados por nombre.
func (r *Repository) List() ([]Agente, error) {
	var list []Agente
	err := r.DB.Order("nombre ASC").Find(&list).Error
	return list, err
}

func (r *Repository) Update(a *Agente) error {
	return r.DB.Save(a).Error
}

// CountOperaciones cuenta las operaciones que referencian al agente.
func (r *Repository) CountOperaciones(id uint) (int64, error) {
	var count int64
	err := r.DB.Table("operaciones").Where("agente_id = ?", id).Count(&count).Error
	return count, err
}

func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&Agente{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
