package operacion

import (
	"time"

	"github.com/AltamarHomes/api-ventas/internal/agente"
	"github.com/AltamarHomes/api-ventas/internal/cliente"
	"github.com/AltamarHomes/api-ventas/internal/pago"
	"github.com/AltamarHomes/api-ventas/internal/promocion"
	"github.com/AltamarHomes/api-ventas/internal/tramocomision"
	"github.com/AltamarHomes/api-ventas/internal/vivienda"
	"gorm.io/gorm"
)

// Estados posibles de una operación.
const (
	EstadoActiva    = "ACTIVA"
	EstadoCancelada = "CANCELADA"
)

// Operacion representa la venta de una vivienda a un cliente dentro de una
// promoción. Cada vivienda admite como máximo una operación ACTIVA.
// PctComisionAgente es una copia de la comisión base del agente tomada en el
// alta y editable después de forma independiente.
type Operacion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Estado      string    `gorm:"size:20;not null;default:'ACTIVA';index" json:"estado"`
	FechaInicio time.Time `json:"fechaInicio"`

	ClienteID uint            `gorm:"not null;index" json:"clienteId"`
	Cliente   cliente.Cliente `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`

	PromocionID uint                `gorm:"not null;index" json:"promocionId"`
	Promocion   promocion.Promocion `gorm:"foreignKey:PromocionID" json:"promocion,omitempty"`

	ViviendaID uint              `gorm:"not null;index" json:"viviendaId"`
	Vivienda   vivienda.Vivienda `gorm:"foreignKey:ViviendaID" json:"vivienda,omitempty"`

	AgenteID *uint          `gorm:"index" json:"agenteId,omitempty"`
	Agente   *agente.Agente `gorm:"foreignKey:AgenteID" json:"agente,omitempty"`

	PctComisionAgente float64 `gorm:"not null;default:0" json:"pctComisionAgente"`

	Pagos  []pago.Pago                   `gorm:"foreignKey:OperacionID;constraint:OnDelete:CASCADE" json:"pagos,omitempty"`
	Tramos []tramocomision.TramoComision `gorm:"foreignKey:OperacionID;constraint:OnDelete:CASCADE" json:"tramos,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Operacion) TableName() string { return "operaciones" }

// Migrate crea la tabla en la base de datos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Operacion{})
}
