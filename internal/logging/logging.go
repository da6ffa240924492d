package logging

import (
	"os"
	"time"

	"equipment-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logg = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(os.Stdout)
	return l
}

func Logger() *logrus.Logger {
	return logg
}

// SetLevel: LOG_LEVEL geçersizse info'da kalır
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logg.WithField("level", level).Warn("geçersiz LOG_LEVEL, info kullanılıyor")
		return
	}
	logg.SetLevel(lvl)
}

func LogError(module, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logg.WithFields(fields).Error(err.Error())
}

// Transition: order/consumption akışındaki durum geçişlerini loglar
func Transition(module string, id any, from, to string) {
	logg.WithFields(logrus.Fields{
		"module": module,
		"id":     id,
		"from":   from,
		"to":     to,
	}).Debug("state transition")
}

// RequestLogger: Fiber istek logu
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// ErrorHandler henüz çalışmadı
			status = apperror.Status(err)
		}
		entry := logg.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
			"ua":      c.Get(fiber.HeaderUserAgent),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Warn("request")
		} else {
			entry.Info("request")
		}
		return err
	}
}
