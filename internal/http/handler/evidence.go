package handler

import (
	"strconv"

	"marketapi/internal/http/middleware"
	"marketapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListEvidence serves GET /evidence?supplier_code=.
func ListEvidence(svc service.EvidenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var code *int64
		if raw := c.Query("supplier_code"); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_SUPPLIER_CODE", "invalid supplier_code")
			}
			code = &v
		}
		rows, err := svc.List(c.UserContext(), code)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rows)
	}
}

// SubmittedEvidence serves GET /evidence/submitted.
func SubmittedEvidence(svc service.EvidenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.Submitted(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rows)
	}
}

// GetEvidence serves GET /evidence/:id.
func GetEvidence(svc service.EvidenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		e, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(e)
	}
}

// DeleteEvidence serves DELETE /evidence/:id for the owning supplier's drafts.
func DeleteEvidence(svc service.EvidenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		if err := svc.DeleteDraft(c.UserContext(), id, middleware.CurrentUser(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UnassessedCaseStudies serves GET /case-studies/unassessed.
func UnassessedCaseStudies(svc service.CaseStudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.Unassessed(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rows)
	}
}

// CaseStudyAssessments serves GET /case-studies/:id/assessments?own=true.
func CaseStudyAssessments(svc service.CaseStudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		rows, err := svc.Assessments(c.UserContext(), id, middleware.CurrentUser(c), c.QueryBool("own"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rows)
	}
}

// CreateCaseStudyAssessment serves POST /case-studies/:id/assessments.
func CreateCaseStudyAssessment(svc service.CaseStudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var req service.CaseStudyAssessmentRequest
		if err := bindJSON(c, &req); err != nil {
			return writeServiceError(c, err)
		}
		a, err := svc.CreateAssessment(c.UserContext(), id, middleware.CurrentUser(c), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// UpdateCaseStudyAssessment serves PUT /case-study-assessments/:id.
func UpdateCaseStudyAssessment(svc service.CaseStudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var req service.CaseStudyAssessmentRequest
		if err := bindJSON(c, &req); err != nil {
			return writeServiceError(c, err)
		}
		a, err := svc.UpdateAssessment(c.UserContext(), id, middleware.CurrentUser(c), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// DeleteCaseStudyAssessment serves DELETE /case-study-assessments/:id.
func DeleteCaseStudyAssessment(svc service.CaseStudyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		if err := svc.DeleteAssessment(c.UserContext(), id, middleware.CurrentUser(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
