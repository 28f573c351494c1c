package handler

import (
	"marketapi/internal/http/middleware"
	"marketapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListQuestions serves GET /brief/:id/questions.
func ListQuestions(svc service.QuestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.Questions(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetQuestion serves GET /brief/:id/question?questionId=.
func GetQuestion(svc service.QuestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		questionID, err := queryID(c, "questionId", "INVALID_QUESTION_ID")
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.Question(c.UserContext(), id, questionID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListAnswers serves GET /brief/:id/answers.
func ListAnswers(svc service.QuestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		res, err := svc.Answers(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// PublishAnswer serves POST /brief/:id/answers.
func PublishAnswer(svc service.QuestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var req service.PublishAnswerRequest
		if err := bindJSON(c, &req); err != nil {
			return writeServiceError(c, err)
		}
		a, err := svc.PublishAnswer(c.UserContext(), id, middleware.CurrentUser(c), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// ListAssessors serves GET /brief/:id/assessors.
func ListAssessors(svc service.AssessorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		rows, err := svc.List(c.UserContext(), id, middleware.CurrentUser(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rows)
	}
}

// AddAssessors serves POST /brief/:id/assessors with a list of {email_address, view_day_rates}.
func AddAssessors(svc service.AssessorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return writeServiceError(c, err)
		}
		var in []service.AssessorInput
		if err := bindJSON(c, &in); err != nil {
			return writeServiceError(c, err)
		}
		rows, err := svc.Add(c.UserContext(), id, middleware.CurrentUser(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rows)
	}
}
