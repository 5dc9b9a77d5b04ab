package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aura-dashboard/backend/internal/comparison"
)

const submissionKey = "validated_submission"

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxFieldLength      int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

func (cfg *Config) applyDefaults() {
	if cfg.MaxFieldLength == 0 {
		cfg.MaxFieldLength = 500
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{fiber.MIMEApplicationJSON}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// Middleware rejects write requests whose declared content type is not allowed.
func Middleware(cfg Config) fiber.Handler {
	cfg.applyDefaults()

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if contentType == "" {
			return c.Next()
		}
		for _, allowed := range cfg.AllowedContentTypes {
			if strings.Contains(contentType, allowed) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error": "Unsupported content type",
		})
	}
}

// Submission decodes and sanitizes a comparison request body. Handlers read the result
// with SubmissionFrom.
func Submission(cfg Config) fiber.Handler {
	cfg.applyDefaults()

	return func(c *fiber.Ctx) error {
		var sub comparison.Submission
		if err := c.BodyParser(&sub); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		fields := []*string{
			&sub.Title,
			&sub.ModelA.SelectedBaseModel, &sub.ModelA.SelectedFramework, &sub.ModelA.Architecture, &sub.ModelA.DataSize,
			&sub.ModelB.SelectedBaseModel, &sub.ModelB.SelectedFramework, &sub.ModelB.Architecture, &sub.ModelB.DataSize,
		}
		for _, f := range fields {
			*f = sanitizeString(*f)

			if len(*f) > cfg.MaxFieldLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Field exceeds maximum length",
				})
			}

			if containsXSS(*f) {
				cfg.Logger.Warn("Potential XSS attempt",
					zap.String("ip", c.IP()),
					zap.String("value", *f),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid field content",
				})
			}
		}

		c.Locals(submissionKey, sub)
		return c.Next()
	}
}

func SubmissionFrom(c *fiber.Ctx) (comparison.Submission, bool) {
	sub, ok := c.Locals(submissionKey).(comparison.Submission)
	return sub, ok
}

func containsXSS(input string) bool {
	return xssPattern.MatchString(input)
}

func sanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
