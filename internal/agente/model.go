package agente

import (
	"time"

	"gorm.io/gorm"
)

// Agente representa una agencia externa que intermedia ventas. Su comisión
// base se copia a la operación en el momento del alta (snapshot editable).
type Agente struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Nombre          string    `gorm:"size:255;not null" json:"nombre"`
	Email           string    `gorm:"size:255" json:"email,omitempty"`
	Telefono        string    `gorm:"size:50" json:"telefono,omitempty"`
	ComisionBasePct float64   `gorm:"not null;default:0" json:"comisionBasePct"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Agente) TableName() string { return "agentes" }

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Agente{})
}
