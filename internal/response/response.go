package response

import "github.com/gofiber/fiber/v2"

// Envelope: tüm JSON cevapların ortak şekli
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{Success: true, Data: data})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

func Message(c *fiber.Ctx, msg string) error {
	return c.JSON(Envelope{Success: true, Message: msg})
}

func WithMessage(c *fiber.Ctx, data any, msg string) error {
	return c.JSON(Envelope{Success: true, Data: data, Message: msg})
}

func Fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: msg})
}
