package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/internal/storage/reports"
	"github.com/aura-dashboard/backend/pkg/logger"
)

type ReportsHandler struct {
	store    *reports.Store
	exporter *report.Exporter
}

func NewReportsHandler(store *reports.Store, exporter *report.Exporter) *ReportsHandler {
	return &ReportsHandler{
		store:    store,
		exporter: exporter,
	}
}

func (h *ReportsHandler) List(c *fiber.Ctx) error {
	all, err := h.store.LoadAll(c.UserContext())
	if err != nil {
		logger.Error("Failed to load reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": all,
		"count":   len(all),
	})
}

func (h *ReportsHandler) Clear(c *fiber.Ctx) error {
	if err := h.store.Clear(c.UserContext()); err != nil {
		logger.Error("Failed to clear reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear reports",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReportsHandler) Export(c *fiber.Ctx) error {
	format, err := report.ParseFormat(c.Query("format", string(report.FormatCSV)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	id := c.Params("id")
	all, err := h.store.LoadAll(c.UserContext())
	if err != nil {
		logger.Error("Failed to load reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load reports",
		})
	}

	for _, r := range all {
		if r.ID == id {
			return sendExport(c, h.exporter, r, format)
		}
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Report not found",
	})
}
