package metrics

import (
	"strconv"

	"equipment-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "equipment_orders_created_total",
		Help: "Committed orders.",
	})

	OrdersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equipment_orders_rejected_total",
		Help: "Orders that failed validation or reservation, by reason.",
	}, []string{"reason"})

	ConsumptionLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "equipment_consumption_logged_total",
		Help: "Committed consumption records.",
	})

	LowStockNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "equipment_low_stock_notifications_total",
		Help: "Low stock notifications created.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "equipment_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
)

// Middleware: route pattern'ine göre sayar, ham path kullanılmaz
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			// ErrorHandler henüz çalışmadı
			status = apperror.Status(err)
		}
		HTTPRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
