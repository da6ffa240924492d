package server

import (
	"time"

	"equipment-backend/internal/audit"
	"equipment-backend/internal/auth"
	"equipment-backend/internal/config"
	"equipment-backend/internal/consumption"
	"equipment-backend/internal/events"
	"equipment-backend/internal/inventory"
	"equipment-backend/internal/logging"
	"equipment-backend/internal/metrics"
	"equipment-backend/internal/models"
	"equipment-backend/internal/notification"
	"equipment-backend/internal/order"
	"equipment-backend/internal/prediction"
	"equipment-backend/internal/response"
	"equipment-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps: router'ın ihtiyaç duyduğu bağımlılıklar. Idempotency nil olabilir.
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Authenticator auth.Authenticator
	Store         storage.Store
	Publisher     events.Publisher
	Idempotency   *order.Idempotency

	// Yazma istekleri için dakikalık limit, 0 ise 120
	WriteLimit int
}

func New(d Deps) *fiber.App {
	cfg := d.Config
	if d.Publisher == nil {
		d.Publisher = events.Noop{}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: response.ErrorHandler,
		BodyLimit:    int(cfg.UploadMaxBytes()) + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(logging.RequestLogger())
	if cfg.MetricsEnabled {
		app.Use(metrics.Middleware())
	}

	// AllowOrigins boş bırakılırsa her origin için predicate çağrılır
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: cfg.AllowOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + order.HeaderIdempotencyKey,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now().UTC()})
	})
	if cfg.MetricsEnabled {
		app.Get("/metrics", metrics.Handler())
	}
	if _, ok := d.Store.(*storage.LocalStore); ok {
		app.Static("/uploads", cfg.UploadDir)
	}

	writeLimit := d.WriteLimit
	if writeLimit == 0 {
		writeLimit = 120
	}

	api := app.Group("/api")
	api.Use(limiter.New(limiter.Config{
		Max:        writeLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			switch c.Method() {
			case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
				return true
			}
			return false
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Fail(c, fiber.StatusTooManyRequests, "Too many requests")
		},
	}))
	api.Use(auth.Authenticate(d.Authenticator))

	api.Get("/auth/me", auth.MeHandler())

	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Ekipmanlar
	invSvc := inventory.NewService(d.DB)
	api.Get("/equipments", inventory.ListEquipmentsHandler(invSvc))
	api.Get("/equipments/low-stock", inventory.LowStockHandler(invSvc))
	api.Get("/equipments/:id", inventory.GetEquipmentHandler(invSvc))
	api.Post("/equipments", adminOnly, inventory.CreateEquipmentHandler(invSvc))
	api.Put("/equipments/:id", adminOnly, inventory.UpdateEquipmentHandler(invSvc))
	api.Delete("/equipments/:id", adminOnly, inventory.DeleteEquipmentHandler(invSvc))

	// Siparişler: sabit path'ler :id'den önce
	orderSvc := order.NewService(d.DB, d.Store, d.Publisher)
	api.Get("/orders/history/movements", order.MovementsHandler(orderSvc))
	api.Get("/orders/history/movements/export", order.ExportMovementsHandler(orderSvc))
	api.Delete("/orders/attachments/:id", order.DeleteAttachmentHandler(orderSvc))
	api.Post("/orders", order.CreateOrderHandler(orderSvc, d.Idempotency))
	api.Get("/orders", order.ListOrdersHandler(orderSvc))
	api.Get("/orders/:id", order.GetOrderHandler(orderSvc))
	api.Put("/orders/:id", order.UpdateOrderHandler(orderSvc))
	api.Delete("/orders/:id", order.DeleteOrderHandler(orderSvc))
	api.Post("/orders/:id/attachments", order.UploadAttachmentHandler(orderSvc, cfg.UploadMaxBytes()))
	api.Get("/orders/:id/attachments", order.ListAttachmentsHandler(orderSvc))

	// Sarf
	consSvc := consumption.NewService(d.DB)
	api.Post("/consumption", consumption.LogHandler(consSvc))
	api.Get("/consumption", consumption.HistoryHandler(consSvc))
	api.Get("/consumption/export", consumption.ExportHandler(consSvc))
	api.Get("/consumption/equipment/:equipment_id", consumption.ByEquipmentHandler(consSvc))
	api.Get("/consumption/:id", consumption.GetHandler(consSvc))

	notifSvc := notification.NewService(d.DB)
	api.Get("/notifications", notification.ListHandler(notifSvc))
	api.Put("/notifications/:id/sent", notification.MarkSentHandler(notifSvc))

	predSvc := prediction.NewService(d.DB)
	api.Get("/predictions", prediction.ListHandler(predSvc))
	api.Get("/predictions/:equipment_id", prediction.ByEquipmentHandler(predSvc))

	auditSvc := audit.NewService(d.DB)
	api.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler(auditSvc))

	return app
}
