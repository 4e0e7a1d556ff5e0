package tramocomision

import (
	"time"

	"github.com/AltamarHomes/api-ventas/internal/factura"
	"gorm.io/gorm"
)

// Tipos de tramo de comisión. Como máximo existe un tramo por (operación, tipo).
const (
	TipoVendedoraHito1 = "VENDEDORA_HITO_1"
	TipoVendedoraHito2 = "VENDEDORA_HITO_2"
	TipoAgente         = "AGENTE"
)

// TiposConocidos devuelve los tipos de tramo que participan en facturación.
func TiposConocidos() []string {
	return []string{TipoVendedoraHito1, TipoVendedoraHito2, TipoAgente}
}

// TramoComision representa un tramo de comisión generado por el motor de
// hitos al cruzarse un umbral de pago acumulado. El motor lo crea y refresca
// sus importes, pero nunca lo borra ni modifica importes con factura emitida.
type TramoComision struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OperacionID uint   `gorm:"not null;uniqueIndex:idx_tramos_operacion_tipo" json:"operacionId"`
	Tipo        string `gorm:"size:30;not null;uniqueIndex:idx_tramos_operacion_tipo" json:"tipo"`

	BaseImponible float64 `gorm:"not null;default:0" json:"baseImponible"`
	IVA           float64 `gorm:"not null;default:0" json:"iva"`

	// Facturable se activa al cruzar el hito y nunca vuelve a desactivarse.
	Facturable      bool       `gorm:"not null;default:false;index" json:"facturable"`
	FechaFacturable *time.Time `json:"fechaFacturable,omitempty"`

	// Validado marca el tramo como aprobado para liquidación/facturación.
	Validado        bool       `gorm:"not null;default:false;index" json:"validado"`
	FechaValidacion *time.Time `json:"fechaValidacion,omitempty"`

	Factura *factura.Factura `gorm:"foreignKey:TramoID;constraint:OnDelete:CASCADE" json:"factura,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (TramoComision) TableName() string { return "tramos_comision" }

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&TramoComision{})
}
