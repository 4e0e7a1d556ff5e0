package facturacion

import (
	"io"
	"strings"
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

func newTestService(t *testing.T) (*gorm.DB, *Service) {
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
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return db, NewService(db, logger)
}

// seedOperacion da de alta promoción, vivienda, cliente y operación mínimas
// para poder colgar tramos.
func seedOperacion(t *testing.T, db *gorm.DB, nombrePromo, codigoVivienda, nif string) *operacion.Operacion {
	t.Helper()

	promo := promocion.Promocion{Nombre: nombrePromo, ComisionTotalPct: 6, IvaPorcentaje: 10, Hito1Pct: 15, Hito2Pct: 30, RepartoHito1: 50, RepartoHito2: 50}
	require.NoError(t, db.Create(&promo).Error)

	viv := vivienda.Vivienda{PromocionID: promo.ID, Codigo: codigoVivienda, PrecioSinIva: 200000}
	require.NoError(t, db.Create(&viv).Error)

	cli := cliente.Cliente{Nombre: "Carlos Vega", NifPasaporte: nif}
	require.NoError(t, db.Create(&cli).Error)

	op := operacion.Operacion{
		Estado:      operacion.EstadoActiva,
		FechaInicio: time.Now(),
		ClienteID:   cli.ID,
		PromocionID: promo.ID,
		ViviendaID:  viv.ID,
	}
	require.NoError(t, db.Create(&op).Error)
	return &op
}

func seedTramo(t *testing.T, db *gorm.DB, opID uint, tipo string, facturable, validado bool) *tramocomision.TramoComision {
	t.Helper()
	ahora := time.Now()
	tr := tramocomision.TramoComision{
		OperacionID:   opID,
		Tipo:          tipo,
		BaseImponible: 6000,
		IVA:           1260,
		Facturable:    facturable,
	}
	if facturable {
		tr.FechaFacturable = &ahora
	}
	if validado {
		tr.Validado = true
		tr.FechaValidacion = &ahora
	}
	require.NoError(t, db.Create(&tr).Error)
	return &tr
}

func TestValidarTramos_LoteConIDsInexistentes(t *testing.T) {
	db, svc := newTestService(t)
	op := seedOperacion(t, db, "Promo Norte", "A-101", "22222222J")

	t1 := seedTramo(t, db, op.ID, tramocomision.TipoVendedoraHito1, true, false)
	t2 := seedTramo(t, db, op.ID, tramocomision.TipoVendedoraHito2, true, false)
	t3 := seedTramo(t, db, op.ID, tramocomision.TipoAgente, true, false)

	count, err := svc.ValidarTramos([]uint{t1.ID, t2.ID, 9999})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	var validados []tramocomision.TramoComision
	require.NoError(t, db.Where("validado = ?", true).Find(&validados).Error)
	require.Len(t, validados, 2)
	for _, tr := range validados {
		assert.NotNil(t, tr.FechaValidacion)
	}

	var intacto tramocomision.TramoComision
	require.NoError(t, db.First(&intacto, t3.ID).Error)
	assert.False(t, intacto.Validado)
}

func TestValidarTramos_ListaVacia(t *testing.T) {
	_, svc := newTestService(t)
	count, err := svc.ValidarTramos(nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarcarCobrado_CreaLiquidacionSintetica(t *testing.T) {
	db, svc := newTestService(t)
	op := seedOperacion(t, db, "Promo Norte", "A-101", "22222222J")
	tr := seedTramo(t, db, op.ID, tramocomision.TipoVendedoraHito1, true, true)

	require.NoError(t, svc.MarcarCobrado(tr.ID))

	f, err := factura.NewRepository(db).FindByTramo(tr.ID)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.True(t, strings.HasPrefix(f.Numero, PrefijoLiquidacion))
	// La liquidación sintética nace directamente COBRADA, sin pasar por EMITIDA.
	assert.Equal(t, factura.EstadoCobrada, f.Estado)
}

func TestMarcarCobrado_ConFacturaExistente(t *testing.T) {
	db, svc := newTestService(t)
	op := seedOperacion(t, db, "Promo Norte", "A-101", "22222222J")
	tr := seedTramo(t, db, op.ID, tramocomision.TipoVendedoraHito1, true, true)

	require.NoError(t, db.Create(&factura.Factura{
		TramoID:      tr.ID,
		Numero:       "FV-2026-031",
		FechaEmision: time.Now(),
		Estado:       factura.EstadoEmitida,
	}).Error)

	require.NoError(t, svc.MarcarCobrado(tr.ID))

	f, err := factura.NewRepository(db).FindByTramo(tr.ID)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "FV-2026-031", f.Numero)
	assert.Equal(t, factura.EstadoCobrada, f.Estado)
}

func TestMarcarCobrado_TramoInexistente(t *testing.T) {
	_, svc := newTestService(t)
	err := svc.MarcarCobrado(9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTramoNoEncontrado)
}

func TestRevertir_LiquidacionSintetica(t *testing.T) {
	db, svc := newTestService(t)
	op := seedOperacion(t, db, "Promo Norte", "A-101", "22222222J")
	tr := seedTramo(t, db, op.ID, tramocomision.TipoVendedoraHito1, true, true)

	require.NoError(t, svc.MarcarCobrado(tr.ID))
	require.NoError(t, svc.Revertir(tr.ID))

	var despues tramocomision.TramoComision
	require.NoError(t, db.First(&despues, tr.ID).Error)
	assert.False(t, despues.Validado)
	assert.Nil(t, despues.FechaValidacion)
	// La facturabilidad es pegajosa: revertir no la retira.
	assert.True(t, despues.Facturable)

	f, err := factura.NewRepository(db).FindByTramo(tr.ID)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestRevertir_FacturaRealSeAnula(t *testing.T) {
	db, svc := newTestService(t)
	op := seedOperacion(t, db, "Promo Norte", "A-101", "22222222J")
	tr := seedTramo(t, db, op.ID, tramocomision.TipoVendedoraHito1, true, true)

	require.NoError(t, db.Create(&factura.Factura{
		TramoID:      tr.ID,
		Numero:       "FV-2026-031",
		FechaEmision: time.Now(),
		Estado:       factura.EstadoCobrada,
	}).Error)

	require.NoError(t, svc.Revertir(tr.ID))

	var despues tramocomision.TramoComision
	require.NoError(t, db.First(&despues, tr.ID).Error)
	assert.False(t, despues.Validado)

	f, err := factura.NewRepository(db).FindByTramo(tr.ID)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, factura.EstadoAnulada, f.Estado)
	assert.Equal(t, "FV-2026-031", f.Numero)
}

func TestRevertir_TramoInexistente(t *testing.T) {
	_, svc := newTestService(t)
	err := svc.Revertir(9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTramoNoEncontrado)
}

func TestListarPendientes(t *testing.T) {
	db, svc := newTestService(t)

	opA := seedOperacion(t, db, "Promo Norte", "A-101", "22222222J")
	opB := seedOperacion(t, db, "Promo Sur", "B-201", "33333333K")

	pendienteA := seedTramo(t, db, opA.ID, tramocomision.TipoVendedoraHito1, true, false)
	seedTramo(t, db, opA.ID, tramocomision.TipoVendedoraHito2, true, true) // ya validado
	seedTramo(t, db, opA.ID, tramocomision.TipoAgente, false, false)      // aún no facturable
	pendienteB := seedTramo(t, db, opB.ID, tramocomision.TipoVendedoraHito1, true, false)

	todos, err := svc.ListarPendientes(nil)
	require.NoError(t, err)
	require.Len(t, todos, 2)

	ids := []uint{todos[0].ID, todos[1].ID}
	assert.Contains(t, ids, pendienteA.ID)
	assert.Contains(t, ids, pendienteB.ID)

	soloA, err := svc.ListarPendientes(&opA.PromocionID)
	require.NoError(t, err)
	require.Len(t, soloA, 1)
	assert.Equal(t, pendienteA.ID, soloA[0].ID)
	assert.Equal(t, "Carlos Vega", soloA[0].Cliente)
	assert.Equal(t, "Promo Norte", soloA[0].Promocion)
	assert.Equal(t, "A-101", soloA[0].ViviendaCodigo)
}
