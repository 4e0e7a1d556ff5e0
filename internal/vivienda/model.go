package vivienda

import (
	"time"

	"gorm.io/gorm"
)

// Vivienda representa un inmueble vendible dentro de una promoción. El código
// es único dentro de su promoción; el precio se expresa sin IVA.
type Vivienda struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PromocionID  uint      `gorm:"not null;uniqueIndex:idx_viviendas_promocion_codigo" json:"promocionId"`
	Codigo       string    `gorm:"size:50;not null;uniqueIndex:idx_viviendas_promocion_codigo" json:"codigo"`
	Nombre       string    `gorm:"size:255" json:"nombre,omitempty"`
	Planta       string    `gorm:"size:20" json:"planta,omitempty"`
	Letra        string    `gorm:"size:10" json:"letra,omitempty"`
	PrecioSinIva float64   `gorm:"not null;default:0" json:"precioSinIva"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Vivienda) TableName() string { return "viviendas" }

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Vivienda{})
}
