package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/AltamarHomes/api-ventas/internal/agente"
	"github.com/AltamarHomes/api-ventas/internal/cliente"
	"github.com/AltamarHomes/api-ventas/internal/factura"
	"github.com/AltamarHomes/api-ventas/internal/facturacion"
	"github.com/AltamarHomes/api-ventas/internal/hitos"
	"github.com/AltamarHomes/api-ventas/internal/operacion"
	"github.com/AltamarHomes/api-ventas/internal/pago"
	"github.com/AltamarHomes/api-ventas/internal/promocion"
	"github.com/AltamarHomes/api-ventas/internal/tramocomision"
	utilsdb "github.com/AltamarHomes/api-ventas/internal/utils/db"
	"github.com/AltamarHomes/api-ventas/internal/vivienda"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env opcional; en despliegue las variables llegan del entorno.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	db, err := utilsdb.GetDB()
	if err != nil {
		log.Fatal("Error al conectar con la base de datos:", err)
	}

	// AutoMigrate para todos los modelos
	if err := promocion.Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate:", err)
	}
	if err := vivienda.Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate:", err)
	}
	if err := cliente.Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate:", err)
	}
	if err := agente.Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate:", err)
	}
	if err := operacion.Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate:", err)
	}
	if err := pago.Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate:", err)
	}
	if err := tramocomision.Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate:", err)
	}
	if err := factura.Migrate(db); err != nil {
		log.Fatal("Error en AutoMigrate:", err)
	}

	// Motor de hitos y flujo de facturación
	motor := hitos.NewService(db, logger)
	flujoFacturacion := facturacion.NewService(db, logger)

	// Handlers
	promocionHandler := promocion.NewHandler(db)
	viviendaHandler := vivienda.NewHandler(db, motor, logger)
	clienteHandler := cliente.NewHandler(db)
	agenteHandler := agente.NewHandler(db)
	operacionHandler := operacion.NewHandler(db, motor, logger)
	pagoHandler := pago.NewHandler(db, motor, logger)
	hitosHandler := hitos.NewHandler(motor)
	facturacionHandler := facturacion.NewHandler(flujoFacturacion)

	// Router
	r := mux.NewRouter()

	// Rutas de promociones y viviendas
	r.HandleFunc("/promociones", promocionHandler.Crear).Methods("POST")
	r.HandleFunc("/promociones", promocionHandler.Listar).Methods("GET")
	r.HandleFunc("/promociones/{id}", promocionHandler.BuscarPorID).Methods("GET")
	r.HandleFunc("/promociones/{id}", promocionHandler.Actualizar).Methods("PUT")
	r.HandleFunc("/promociones/{id}", promocionHandler.Eliminar).Methods("DELETE")
	r.HandleFunc("/promociones/{id}/viviendas", viviendaHandler.ListarPorPromocion).Methods("GET")
	r.HandleFunc("/promociones/{id}/viviendas", viviendaHandler.Upsert).Methods("POST")
	r.HandleFunc("/promociones/{id}/viviendas/{vid}", viviendaHandler.Eliminar).Methods("DELETE")

	// Rutas de clientes
	r.HandleFunc("/clientes", clienteHandler.Crear).Methods("POST")
	r.HandleFunc("/clientes", clienteHandler.Listar).Methods("GET")
	r.HandleFunc("/clientes/{id}", clienteHandler.BuscarPorID).Methods("GET")
	r.HandleFunc("/clientes/{id}", clienteHandler.Actualizar).Methods("PUT")
	r.HandleFunc("/clientes/{id}", clienteHandler.Eliminar).Methods("DELETE")

	// Rutas de agentes
	r.HandleFunc("/agentes", agenteHandler.Crear).Methods("POST")
	r.HandleFunc("/agentes", agenteHandler.Listar).Methods("GET")
	r.HandleFunc("/agentes/{id}", agenteHandler.BuscarPorID).Methods("GET")
	r.HandleFunc("/agentes/{id}", agenteHandler.Actualizar).Methods("PUT")
	r.HandleFunc("/agentes/{id}", agenteHandler.Eliminar).Methods("DELETE")

	// Rutas de operaciones y pagos
	r.HandleFunc("/operaciones", operacionHandler.Crear).Methods("POST")
	r.HandleFunc("/operaciones", operacionHandler.Listar).Methods("GET")
	r.HandleFunc("/operaciones/{id}", operacionHandler.BuscarPorID).Methods("GET")
	r.HandleFunc("/operaciones/{id}", operacionHandler.Actualizar).Methods("PUT")
	r.HandleFunc("/operaciones/{id}", operacionHandler.Eliminar).Methods("DELETE")
	r.HandleFunc("/operaciones/{id}/cancelar", operacionHandler.Cancelar).Methods("POST")
	r.HandleFunc("/operaciones/{id}/pagos", pagoHandler.Registrar).Methods("POST")
	r.HandleFunc("/pagos/{id}", pagoHandler.Editar).Methods("PUT")
	r.HandleFunc("/pagos/{id}", pagoHandler.Eliminar).Methods("DELETE")

	// Rutas del motor de hitos
	r.HandleFunc("/hitos/recalcular", hitosHandler.RecalcularTodas).Methods("POST")
	r.HandleFunc("/operaciones/{id}/recalcular", hitosHandler.Recalcular).Methods("POST")

	// Rutas de facturación
	r.HandleFunc("/facturacion/pendientes", facturacionHandler.ListarPendientes).Methods("GET")
	r.HandleFunc("/facturacion/validar", facturacionHandler.Validar).Methods("POST")
	r.HandleFunc("/tramos/{id}/cobrar", facturacionHandler.MarcarCobrado).Methods("POST")
	r.HandleFunc("/tramos/{id}/revertir", facturacionHandler.Revertir).Methods("POST")

	handler := cors.Default().Handler(r)

	// Inicia servidor
	fmt.Println("Servidor escuchando en http://localhost:8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}
