package router

import (
	"time"

	"repairpos/internal/config"
	"repairpos/internal/handler"
	"repairpos/internal/middleware"
	"repairpos/internal/repository"
	"repairpos/internal/service"
	"repairpos/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB
// dispatcher may be nil, in which case domain events are not published.
func New(cfg *config.Config, db *gorm.DB, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
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

	// ── Events ───────────────────────────────────────────────────────────────
	var (
		events service.EventPublisher
		status handler.EventsStatus
	)
	if dispatcher != nil {
		events = dispatcher
		status = dispatcher
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	jobRepo := repository.NewServiceJobRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	loc := cfg.Location()
	ids := service.NewIdentifierGenerator(cfg.IdentifierMaxAttempts, nil)
	ledger := service.NewStockLedger(productRepo, movementRepo)

	productSvc := service.NewProductService(productRepo, movementRepo)
	customerSvc := service.NewCustomerService(customerRepo, nil)
	saleSvc := service.NewSaleService(saleRepo, productRepo, userRepo, customerRepo, ledger, ids, events, loc, nil)
	jobSvc := service.NewServiceJobService(jobRepo, userRepo, customerRepo, ids, events, loc, nil)
	partSvc := service.NewPartUsageService(jobRepo, userRepo, ledger, nil)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductsHandler(productSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	jobsH := handler.NewServiceJobsHandler(jobSvc, partSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, status))

	v1 := r.Group("/v1")
	{
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.Get)
		v1.GET("/products/:id/movements", productsH.Movements)

		v1.GET("/customers", customersH.List)
		v1.POST("/customers", customersH.Create)
		v1.GET("/customers/:id", customersH.Get)
		v1.PUT("/customers/:id", customersH.Update)

		v1.POST("/sales", salesH.Commit)
		v1.GET("/sales", salesH.List)
		v1.GET("/sales/:id", salesH.Get)

		jobs := v1.Group("/service-jobs")
		{
			jobs.POST("", jobsH.Open)
			jobs.GET("", jobsH.List)
			jobs.GET("/stats", jobsH.Stats)
			jobs.GET("/:id", jobsH.Get)
			jobs.GET("/:id/updates", jobsH.Updates)
			jobs.POST("/:id/reschedule", jobsH.Reschedule)
			jobs.POST("/:id/notes", jobsH.AddNote)
			jobs.POST("/:id/complete", jobsH.Complete)
			jobs.POST("/:id/cancel", jobsH.Cancel)
			jobs.POST("/:id/parts", jobsH.AddPart)
		}
		v1.DELETE("/service-parts/:id", jobsH.RemovePart)
	}

	return r
}
