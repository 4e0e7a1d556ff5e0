package cliente

import (
	"errors"

	"gorm.io/gorm"
)

// Repository encapsula el acceso a datos de Clientes.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia un nuevo repositorio.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserta un nuevo cliente.
func (r *Repository) Create(c *Cliente) error {
	return r.DB.Create(c).Error
}

// FindByID busca un cliente por su ID.
func (r *Repository) FindByID(id uint) (*Cliente, error) {
	var c Cliente
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByNif busca un cliente por NIF/pasaporte. Devuelve (nil, nil) si no existe.
func (r *Repository) FindByNif(nif string) (*Cliente, error) {
	var c Cliente
	err := r.DB.Where("nif_pasaporte = ?", nif).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// NifEnUsoPorOtro comprueba si el NIF ya pertenece a un cliente distinto de id.
func (r *Repository) NifEnUsoPorOtro(nif string, id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&Cliente{}).
		Where("nif_pasaporte = ? AND id <> ?", nif, id).
		Count(&count).Error
	return count > 0, err
}

// UpsertByNif vincula el cliente existente con ese NIF actualizando sus datos,
// o lo crea si no existe. Es la semántica de alta de operación.
func (r *Repository) UpsertByNif(db *gorm.DB, c *Cliente) error {
	if db == nil {
		db = r.DB
	}
	var existente Cliente
	err := db.Where("nif_pasaporte = ?", c.NifPasaporte).First(&existente).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(c).Error
	}
	if err != nil {
		return err
	}
	existente.Nombre = c.Nombre
	if c.Email != "" {
		existente.Email = c.Email
	}
	if c.Telefono != "" {
		existente.Telefono = c.Telefono
	}
	if err := db.Save(&existente).Error; err != nil {
		return err
	}
	*c = existente
	return nil
}

// List devuelve todos los clientes ordenados por nombre.
func (r *Repository) List() ([]Cliente, error) {
	var list []Cliente
	err := r.DB.Order("nombre ASC").Find(&list).Error
	return list, err
}

// Update guarda los cambios de un cliente existente.
func (r *Repository) Update(c *Cliente) error {
	return r.DB.Save(c).Error
}

// CountOperaciones cuenta las operaciones que referencian al cliente.
func (r *Repository) CountOperaciones(id uint) (int64, error) {
	var count int64
	err := r.DB.Table("operaciones").Where("cliente_id = ?", id).Count(&count).Error
	return count, err
}

// DeleteByID elimina el cliente; gorm.ErrRecordNotFound si no existía.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&Cliente{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
