package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/timeline"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// errorStatus maps err to the HTTP status of the response.
func errorStatus(err error) int {
	var failure timeline.EntityFailure
	switch {
	case errors.As(err, &failure):
		return fiber.StatusUnprocessableEntity
	case timeline.ErrUnknownKind.Equal(err),
		timeline.ErrNoNormalizer.Equal(err),
		timeline.ErrUpstreamNotFound.Equal(err):
		return fiber.StatusNotFound
	case timeline.ErrUnsupportedQuery.Equal(err):
		return fiber.StatusBadRequest
	case timeline.ErrShapeMismatch.Equal(err),
		timeline.ErrUpstreamRequest.Equal(err),
		timeline.ErrUpstreamStatus.Equal(err):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// fail writes err as {"error": ...} with its mapped status.
func fail(c fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Warn("request failed",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
