package router

import (
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/config"
	"github.com/gabrilr/ferreteria-sistema/internal/handler"
	"github.com/gabrilr/ferreteria-sistema/internal/middleware"
	"github.com/gabrilr/ferreteria-sistema/internal/repository"
	"github.com/gabrilr/ferreteria-sistema/internal/service"
	"github.com/gabrilr/ferreteria-sistema/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	corteRepo := repository.NewCorteRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	carritoRepo := repository.NewCarritoRepository(rdb, cfg.CarritoTTL())

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)
	cal := service.NewCalendario(cfg.Location())

	productoSvc := service.NewProductoService(productoRepo, movimientoStockRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, movimientoStockRepo, corteRepo, dispatcher, cal)
	corteSvc := service.NewCorteService(corteRepo, ventaRepo, dispatcher, cal)
	carritoSvc := service.NewCarritoService(carritoRepo, productoRepo, ventaSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(productoSvc)
	carritoH := handler.NewCarritoHandler(carritoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc, dispatcher)
	corteH := handler.NewCorteCajaHandler(corteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	todos := middleware.RequireRole(middleware.RolCajero, middleware.RolSupervisor, middleware.RolAdministrador)
	supervisores := middleware.RequireRole(middleware.RolSupervisor, middleware.RolAdministrador)

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), todos)
	{
		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.GET("/alertas", productosH.Alertas)
			prods.GET("/codigo/:codigo", productosH.BuscarPorCodigo)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.GET("/:id/movimientos", supervisores, productosH.Movimientos)
		}

		carrito := v1.Group("/carrito")
		{
			carrito.GET("", carritoH.Obtener)
			carrito.DELETE("", carritoH.Vaciar)
			carrito.POST("/items", carritoH.Agregar)
			carrito.PUT("/items/:producto_id", carritoH.EstablecerCantidad)
			carrito.DELETE("/items/:producto_id", carritoH.Quitar)
			carrito.POST("/confirmar", carritoH.Confirmar)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.Registrar)
			ventas.GET("", ventasH.Listar)
			ventas.GET("/resumen", ventasH.Resumen)
			ventas.GET("/reconciliacion", middleware.RequireRole(middleware.RolAdministrador), ventasH.Reconciliacion)
			ventas.GET("/:id", ventasH.ObtenerPorID)
			ventas.PUT("/:id/cancelar", supervisores, ventasH.Cancelar)
		}

		corte := v1.Group("/corte-caja")
		{
			corte.GET("", corteH.Listar)
			corte.GET("/today", corteH.Hoy)
			corte.GET("/resumen/today", corteH.ResumenHoy)
			corte.POST("", corteH.Cerrar)
		}
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
