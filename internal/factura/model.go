package factura

import (
	"time"

	"gorm.io/gorm"
)

// Estados posibles de una factura.
const (
	EstadoEmitida = "EMITIDA"
	EstadoCobrada = "COBRADA"
	EstadoAnulada = "ANULADA"
)

// Factura representa la factura (o liquidación confirmada) asociada a un
// tramo de comisión. Como máximo existe una factura por tramo; mientras
// exista, los importes del tramo quedan congelados para el motor de hitos.
type Factura struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TramoID      uint      `gorm:"not null;uniqueIndex" json:"tramoId"`
	Numero       string    `gorm:"size:100;not null" json:"numero"`
	FechaEmision time.Time `gorm:"not null" json:"fechaEmision"`
	Estado       string    `gorm:"size:20;not null;default:'EMITIDA';index" json:"estado"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Factura) TableName() string { return "facturas" }

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Factura{})
}
