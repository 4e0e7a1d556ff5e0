package pago

import (
	"time"

	"gorm.io/gorm"
)

// Pago representa una entrega a cuenta del comprador dentro de una operación.
// Cada alta, edición o borrado de un pago dispara el recálculo de hitos de su
// operación.
type Pago struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OperacionID uint      `gorm:"not null;index" json:"operacionId"`
	Importe     float64   `gorm:"not null" json:"importe"`
	Fecha       time.Time `gorm:"not null" json:"fecha"`
	Metodo      string    `gorm:"size:100" json:"metodo,omitempty"`
	Referencia  string    `gorm:"size:255" json:"referencia,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Pago) TableName() string { return "pagos" }

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Pago{})
}
