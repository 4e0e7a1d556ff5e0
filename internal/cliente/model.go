package cliente

import (
	"time"

	"gorm.io/gorm"
)

// Cliente representa al comprador de una vivienda. El NIF/pasaporte es la
// clave natural usada para vincular o crear clientes al dar de alta una operación.
type Cliente struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Nombre       string    `gorm:"size:255;not null" json:"nombre"`
	NifPasaporte string    `gorm:"size:50;not null;uniqueIndex" json:"nifPasaporte"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	Telefono     string    `gorm:"size:50" json:"telefono,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName fija el nombre de la tabla en castellano.
func (Cliente) TableName() string { return "clientes" }

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Cliente{})
}
