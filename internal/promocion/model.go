package promocion

import (
	"time"

	"github.com/AltamarHomes/api-ventas/internal/vivienda"
	"gorm.io/gorm"
)

// Promocion representa un proyecto inmobiliario con su configuración comercial:
// comisión total de la vendedora, IVA del inmueble, umbrales de los dos hitos
// (en % del precio con IVA) y reparto de la comisión entre ambos hitos.
// Los repartos son dos campos independientes: no se exige que sumen 100.
type Promocion struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Nombre string `gorm:"size:255;not null" json:"nombre"`

	ComisionTotalPct float64 `gorm:"not null;default:6" json:"comisionTotalPct"`
	IvaPorcentaje    float64 `gorm:"not null;default:10" json:"ivaPorcentaje"`
	Hito1Pct         float64 `gorm:"not null;default:15" json:"hito1Pct"`
	Hito2Pct         float64 `gorm:"not null;default:30" json:"hito2Pct"`
	RepartoHito1     float64 `gorm:"not null;default:50" json:"repartoHito1"`
	RepartoHito2     float64 `gorm:"not null;default:50" json:"repartoHito2"`

	Viviendas []vivienda.Vivienda `gorm:"foreignKey:PromocionID;constraint:OnDelete:CASCADE" json:"viviendas,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Promocion) TableName() string { return "promociones" }

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Promocion{})
}
