package hitos

import (
	"io"
	"testing"
	"time"

	"github.com/AltamarHomes/api-ventas/internal/agente"
	"github.com/AltamarHomes/api-ventas/internal/cliente"
	"github.com/AltamarHomes/api-ventas/internal/factura"
	"github.com/AltamarHomes/api-ventas/internal/operacion"
	"github.com/AltamarHomes/api-ventas/internal/pago"
	"github.com/AltamarHomes/api-ventas/internal/promocion"
	"github.com/AltamarHomes/api-ventas/internal/tramocomision"
	"github.com/AltamarHomes/api-ventas/internal/vivienda"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&promocion.Promocion{},
		&vivienda.Vivienda{},
		&cliente.Cliente{},
		&agente.Agente{},
		&operacion.Operacion{},
		&pago.Pago{},
		&tramocomision.TramoComision{},
		&factura.Factura{},
	))
	return db
}

func newTestService(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	db := newTestDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return db, NewService(db, logger)
}

// seedVenta crea la configuración del escenario de referencia: vivienda de
// 200.000 € sin IVA, promoción al 10% de IVA, hitos 15/30, comisión 6%
// repartida 50/50. Los umbrales resultantes son 33.000 y 66.000.
func seedVenta(t *testing.T, db *gorm.DB, pctAgente float64) *operacion.Operacion {
	t.Helper()

	promo := promocion.Promocion{
		Nombre:           "Residencial Mirador",
		ComisionTotalPct: 6,
		IvaPorcentaje:    10,
		Hito1Pct:         15,
		Hito2Pct:         30,
		RepartoHito1:     50,
		RepartoHito2:     50,
	}
	require.NoError(t, db.Create(&promo).Error)

	viv := vivienda.Vivienda{PromocionID: promo.ID, Codigo: "A-101", Planta: "1", Letra: "A", PrecioSinIva: 200000}
	require.NoError(t, db.Create(&viv).Error)

	cli := cliente.Cliente{Nombre: "Marta Ruiz", NifPasaporte: "11111111H"}
	require.NoError(t, db.Create(&cli).Error)

	op := operacion.Operacion{
		Estado:      operacion.EstadoActiva,
		FechaInicio: time.Now(),
		ClienteID:   cli.ID,
		PromocionID: promo.ID,
		ViviendaID:  viv.ID,
	}
	if pctAgente > 0 {
		ag := agente.Agente{Nombre: "Inmobiliaria Costa", ComisionBasePct: pctAgente}
		require.NoError(t, db.Create(&ag).Error)
		op.AgenteID = &ag.ID
		op.PctComisionAgente = pctAgente
	}
	require.NoError(t, db.Create(&op).Error)
	return &op
}

func pagar(t *testing.T, db *gorm.DB, opID uint, importe float64) {
	t.Helper()
	require.NoError(t, db.Create(&pago.Pago{
		OperacionID: opID,
		Importe:     importe,
		Fecha:       time.Now(),
		Metodo:      "Transferencia",
	}).Error)
}

func tramosDe(t *testing.T, db *gorm.DB, opID uint) []tramocomision.TramoComision {
	t.Helper()
	list, err := tramocomision.NewRepository(db).ListByOperacion(opID)
	require.NoError(t, err)
	return list
}

func TestRecalcular_PorDebajoDelHito1NoCreaTramos(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	pagar(t, db, op.ID, 20000)
	require.NoError(t, svc.Recalcular(op.ID))

	assert.Empty(t, tramosDe(t, db, op.ID))
}

func TestRecalcular_CruceHito1(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	// 20.000 + 15.000 = 35.000 ≥ 33.000
	pagar(t, db, op.ID, 20000)
	pagar(t, db, op.ID, 15000)
	require.NoError(t, svc.Recalcular(op.ID))

	tramos := tramosDe(t, db, op.ID)
	require.Len(t, tramos, 1)
	tr := tramos[0]
	assert.Equal(t, tramocomision.TipoVendedoraHito1, tr.Tipo)
	assert.InDelta(t, 6000, tr.BaseImponible, 0.001) // 200000 * 6% * 50%
	assert.InDelta(t, 1260, tr.IVA, 0.001)           // 21% de servicios
	assert.True(t, tr.Facturable)
	require.NotNil(t, tr.FechaFacturable)
	assert.False(t, tr.Validado)
}

func TestRecalcular_CruceHito2SinAgente(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	// 70.000 ≥ 66.000: se liberan los dos tramos de la vendedora.
	pagar(t, db, op.ID, 35000)
	require.NoError(t, svc.Recalcular(op.ID))
	pagar(t, db, op.ID, 35000)
	require.NoError(t, svc.Recalcular(op.ID))

	tramos := tramosDe(t, db, op.ID)
	require.Len(t, tramos, 2)

	porTipo := map[string]tramocomision.TramoComision{}
	for _, tr := range tramos {
		porTipo[tr.Tipo] = tr
	}
	require.Contains(t, porTipo, tramocomision.TipoVendedoraHito1)
	require.Contains(t, porTipo, tramocomision.TipoVendedoraHito2)
	assert.NotContains(t, porTipo, tramocomision.TipoAgente)

	assert.InDelta(t, 6000, porTipo[tramocomision.TipoVendedoraHito2].BaseImponible, 0.001)
	assert.InDelta(t, 1260, porTipo[tramocomision.TipoVendedoraHito2].IVA, 0.001)
}

func TestRecalcular_CruceHito2ConAgente(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 3)

	pagar(t, db, op.ID, 70000)
	require.NoError(t, svc.Recalcular(op.ID))

	tramos := tramosDe(t, db, op.ID)
	require.Len(t, tramos, 3)

	var agenteTr *tramocomision.TramoComision
	for i := range tramos {
		if tramos[i].Tipo == tramocomision.TipoAgente {
			agenteTr = &tramos[i]
		}
	}
	require.NotNil(t, agenteTr)
	assert.InDelta(t, 6000, agenteTr.BaseImponible, 0.001) // 200000 * 3%
	assert.InDelta(t, 1260, agenteTr.IVA, 0.001)
	assert.True(t, agenteTr.Facturable)
}

func TestRecalcular_Idempotente(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	pagar(t, db, op.ID, 70000)
	require.NoError(t, svc.Recalcular(op.ID))
	antes := tramosDe(t, db, op.ID)

	require.NoError(t, svc.Recalcular(op.ID))
	despues := tramosDe(t, db, op.ID)

	require.Len(t, despues, len(antes))
	for i := range antes {
		assert.Equal(t, antes[i].ID, despues[i].ID)
		assert.Equal(t, antes[i].BaseImponible, despues[i].BaseImponible)
		assert.Equal(t, antes[i].IVA, despues[i].IVA)
	}
}

func TestRecalcular_NoRetraeTramosAlBorrarPagos(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	pagar(t, db, op.ID, 35000)
	require.NoError(t, svc.Recalcular(op.ID))
	require.Len(t, tramosDe(t, db, op.ID), 1)

	// Al borrar los pagos el total cae por debajo del umbral, pero el tramo
	// ya creado no se retrae ni se degrada.
	require.NoError(t, db.Where("operacion_id = ?", op.ID).Delete(&pago.Pago{}).Error)
	require.NoError(t, svc.Recalcular(op.ID))

	tramos := tramosDe(t, db, op.ID)
	require.Len(t, tramos, 1)
	assert.InDelta(t, 6000, tramos[0].BaseImponible, 0.001)
	assert.True(t, tramos[0].Facturable)
}

func TestRecalcular_FacturaCongelaImportes(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	pagar(t, db, op.ID, 70000)
	require.NoError(t, svc.Recalcular(op.ID))
	tramos := tramosDe(t, db, op.ID)
	require.Len(t, tramos, 2)

	// Factura solo sobre el tramo del hito 1.
	var hito1 tramocomision.TramoComision
	require.NoError(t, db.Where("operacion_id = ? AND tipo = ?", op.ID, tramocomision.TipoVendedoraHito1).First(&hito1).Error)
	require.NoError(t, db.Create(&factura.Factura{
		TramoID:      hito1.ID,
		Numero:       "FV-2026-014",
		FechaEmision: time.Now(),
		Estado:       factura.EstadoEmitida,
	}).Error)

	// Sube la comisión total: los importes recalculados cambiarían.
	require.NoError(t, db.Model(&promocion.Promocion{}).
		Where("id = ?", op.PromocionID).
		Update("comision_total_pct", 8).Error)
	require.NoError(t, svc.Recalcular(op.ID))

	var hito1Despues, hito2Despues tramocomision.TramoComision
	require.NoError(t, db.Where("operacion_id = ? AND tipo = ?", op.ID, tramocomision.TipoVendedoraHito1).First(&hito1Despues).Error)
	require.NoError(t, db.Where("operacion_id = ? AND tipo = ?", op.ID, tramocomision.TipoVendedoraHito2).First(&hito2Despues).Error)

	// El tramo facturado queda congelado; el otro se refresca.
	assert.InDelta(t, 6000, hito1Despues.BaseImponible, 0.001)
	assert.InDelta(t, 1260, hito1Despues.IVA, 0.001)
	assert.InDelta(t, 8000, hito2Despues.BaseImponible, 0.001) // 200000 * 8% * 50%
	assert.InDelta(t, 1680, hito2Despues.IVA, 0.001)
}

func TestRecalcular_FechaFacturableEstable(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	pagar(t, db, op.ID, 35000)
	require.NoError(t, svc.Recalcular(op.ID))
	antes := tramosDe(t, db, op.ID)
	require.Len(t, antes, 1)
	require.NotNil(t, antes[0].FechaFacturable)

	// Un refresco de importes no debe mover la fecha de facturabilidad.
	require.NoError(t, db.Model(&promocion.Promocion{}).
		Where("id = ?", op.PromocionID).
		Update("reparto_hito1", 80).Error)
	require.NoError(t, svc.Recalcular(op.ID))

	despues := tramosDe(t, db, op.ID)
	require.Len(t, despues, 1)
	assert.InDelta(t, 9600, despues[0].BaseImponible, 0.001) // 200000 * 6% * 80%
	require.NotNil(t, despues[0].FechaFacturable)
	assert.WithinDuration(t, *antes[0].FechaFacturable, *despues[0].FechaFacturable, time.Millisecond)
}

func TestRecalcular_RedondeoDeUmbral(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	// 32.999,996 se redondea a 33.000,00 y cruza el hito 1.
	pagar(t, db, op.ID, 32999.996)
	require.NoError(t, svc.Recalcular(op.ID))
	assert.Len(t, tramosDe(t, db, op.ID), 1)
}

func TestRecalcular_RedondeoPorDebajoDelUmbral(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	// 32.999,99 queda por debajo de 33.000,00 tras el redondeo.
	pagar(t, db, op.ID, 32999.99)
	require.NoError(t, svc.Recalcular(op.ID))
	assert.Empty(t, tramosDe(t, db, op.ID))
}

func TestRecalcular_OperacionInexistente(t *testing.T) {
	_, svc := newTestService(t)

	err := svc.Recalcular(9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOperacionNoEncontrada)
}

func TestRecalcular_ViviendaHuerfana(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	require.NoError(t, db.Delete(&vivienda.Vivienda{}, op.ViviendaID).Error)

	err := svc.Recalcular(op.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatosIncompletos)
}

func TestRecalcularTodas_AislaFallosPorOperacion(t *testing.T) {
	db, svc := newTestService(t)

	sana := seedVenta(t, db, 0)
	pagar(t, db, sana.ID, 35000)

	rota := operacion.Operacion{
		Estado:      operacion.EstadoActiva,
		FechaInicio: time.Now(),
		ClienteID:   sana.ClienteID,
		PromocionID: sana.PromocionID,
		ViviendaID:  8888, // vivienda inexistente
	}
	require.NoError(t, db.Create(&rota).Error)

	procesadas, fallidas, err := svc.RecalcularTodas()
	require.NoError(t, err)
	assert.Equal(t, 1, procesadas)
	assert.Equal(t, 1, fallidas)
	assert.Len(t, tramosDe(t, db, sana.ID), 1)
}

func TestRecalcularPorVivienda_PropagaCambioDePrecio(t *testing.T) {
	db, svc := newTestService(t)
	op := seedVenta(t, db, 0)

	pagar(t, db, op.ID, 35000)
	require.NoError(t, svc.Recalcular(op.ID))

	// Con el precio nuevo el tramo sin facturar debe refrescarse.
	require.NoError(t, db.Model(&vivienda.Vivienda{}).
		Where("id = ?", op.ViviendaID).
		Update("precio_sin_iva", 250000).Error)

	n, err := svc.RecalcularPorVivienda(op.ViviendaID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tramos := tramosDe(t, db, op.ID)
	require.Len(t, tramos, 1)
	assert.InDelta(t, 7500, tramos[0].BaseImponible, 0.001) // 250000 * 6% * 50%
}

func TestRound2_Centimos(t *testing.T) {
	assert.Equal(t, 33000.0, round2(32999.996))
	assert.Equal(t, 32999.99, round2(32999.994))
	assert.Equal(t, 1.23, round2(1.234))
	assert.Equal(t, 1.24, round2(1.236))
}
