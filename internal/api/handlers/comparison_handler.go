package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aura-dashboard/backend/internal/comparison"
	"github.com/aura-dashboard/backend/internal/metrics"
	"github.com/aura-dashboard/backend/internal/middleware/validation"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/internal/storage/reports"
	"github.com/aura-dashboard/backend/pkg/logger"
)

type ComparisonHandler struct {
	orchestrator *comparison.Orchestrator
	store        *reports.Store
	exporter     *report.Exporter
	ids          reports.IDGenerator
}

func NewComparisonHandler(orchestrator *comparison.Orchestrator, store *reports.Store, exporter *report.Exporter, ids reports.IDGenerator) *ComparisonHandler {
	if ids == nil {
		ids = reports.UUIDGenerator{}
	}
	return &ComparisonHandler{
		orchestrator: orchestrator,
		store:        store,
		exporter:     exporter,
		ids:          ids,
	}
}

func (h *ComparisonHandler) Submit(c *fiber.Ctx) error {
	sub, ok := validation.SubmissionFrom(c)
	if !ok {
		if err := c.BodyParser(&sub); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	draft, err := h.orchestrator.Submit(c.UserContext(), sub)
	if err != nil {
		var predErr *comparison.PredictionError
		switch {
		case errors.Is(err, comparison.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, comparison.ErrComparisonInFlight):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.As(err, &predErr):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to get energy prediction. Please try again.",
				"side":  predErr.Side,
				"cause": predErr.Err.Error(),
			})
		default:
			logger.Error("Comparison failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to run comparison",
			})
		}
	}

	return c.JSON(fiber.Map{
		"state":  comparison.StateReady.String(),
		"report": draft,
	})
}

func (h *ComparisonHandler) Current(c *fiber.Ctx) error {
	draft, err := h.orchestrator.Current()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
			"state": h.orchestrator.State().String(),
		})
	}
	return c.JSON(fiber.Map{
		"state":  comparison.StateReady.String(),
		"report": draft,
	})
}

func (h *ComparisonHandler) Save(c *fiber.Ctx) error {
	draft, err := h.orchestrator.Current()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	saved, err := h.store.Append(c.UserContext(), draft)
	if err != nil {
		logger.Error("Failed to save report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(saved)
}

// Export downloads the current draft under a freshly generated id.
func (h *ComparisonHandler) Export(c *fiber.Ctx) error {
	format, err := report.ParseFormat(c.Query("format", string(report.FormatCSV)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	draft, err := h.orchestrator.Current()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return sendExport(c, h.exporter, draft.WithID(h.ids.Next()), format)
}

func sendExport(c *fiber.Ctx, exporter *report.Exporter, r report.Report, format report.Format) error {
	exp, err := exporter.Export(r, format)
	if err != nil {
		logger.Error("Failed to export report", zap.String("report_id", r.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export report",
		})
	}

	metrics.ReportsExported.WithLabelValues(string(format)).Inc()
	logger.Info("Report exported",
		zap.String("report_id", r.ID),
		zap.String("format", string(format)),
		zap.String("filename", exp.Filename),
	)

	c.Attachment(exp.Filename)
	c.Set(fiber.HeaderContentType, exp.ContentType)
	return c.Send(exp.Body)
}
