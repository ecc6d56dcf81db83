package handler

import (
	"strconv"

	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/middleware"
	"exam-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuestionHandler handles question bank HTTP requests
type QuestionHandler struct {
	questions service.QuestionService
	bind      *middleware.RequestBinder
}

// NewQuestionHandler creates a new QuestionHandler instance
func NewQuestionHandler(questions service.QuestionService, bind *middleware.RequestBinder) *QuestionHandler {
	return &QuestionHandler{questions: questions, bind: bind}
}

// ListQuestions godoc
// @Summary List questions
// @Description Paginated, newest year first then by question number
// @Tags questions
// @Produce json
// @Param subject query string false "Subject ID"
// @Param topic query string false "Topic ID"
// @Param year query int false "Exam year"
// @Param month query string false "June or December"
// @Param paper query string false "Paper name"
// @Param difficulty query string false "easy, medium or hard"
// @Param limit query int false "Page size" default(10)
// @Param page query int false "1-based page" default(1)
// @Success 200 {object} dto.QuestionListResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *fiber.Ctx) error {
	var q dto.QuestionListQuery
	if err := h.bind.Query(c, &q); err != nil {
		return err
	}
	page, err := h.questions.ListQuestions(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetQuestion godoc
// @Summary Get a question
// @Description Viewing a question may count as an attempt
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} dto.QuestionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *fiber.Ctx) error {
	question, err := h.questions.GetQuestion(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(question)
}

// CreateQuestion godoc
// @Summary Create a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question body dto.CreateQuestionRequest true "Question"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *fiber.Ctx) error {
	var req dto.CreateQuestionRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	question, err := h.questions.CreateQuestion(c.UserContext(), &req, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Description Only the fields present in the body are changed
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Param question body dto.UpdateQuestionRequest true "Fields to change"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *fiber.Ctx) error {
	var req dto.UpdateQuestionRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	question, err := h.questions.UpdateQuestion(c.UserContext(), c.Params("id"), &req, middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *fiber.Ctx) error {
	if err := h.questions.DeleteQuestion(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Question removed"})
}

// SubmitAnswer godoc
// @Summary Answer a question
// @Description The correct option is only revealed for wrong answers
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Param answer body dto.SubmitAnswerRequest true "Chosen option index"
// @Success 200 {object} dto.SubmitAnswerResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{id}/answer [post]
func (h *QuestionHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req dto.SubmitAnswerRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	result, err := h.questions.SubmitAnswer(c.UserContext(), c.Params("id"), *req.Answer)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// RandomPractice godoc
// @Summary Random practice set
// @Description Verified questions without answers, from a random offset
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param subject query string false "Subject ID"
// @Param topic query string false "Topic ID"
// @Param difficulty query string false "easy, medium or hard"
// @Param limit query int false "Number of questions" default(10)
// @Success 200 {array} dto.PracticeQuestionResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /questions/practice/random [get]
func (h *QuestionHandler) RandomPractice(c *fiber.Ctx) error {
	var q dto.PracticeQuery
	if err := h.bind.Query(c, &q); err != nil {
		return err
	}
	questions, err := h.questions.RandomPractice(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// ListBySubject godoc
// @Summary Questions of a subject
// @Tags questions
// @Produce json
// @Param subjectId path string true "Subject ID"
// @Success 200 {array} dto.QuestionResponse
// @Router /questions/subject/{subjectId} [get]
func (h *QuestionHandler) ListBySubject(c *fiber.Ctx) error {
	questions, err := h.questions.ListBySubject(c.UserContext(), c.Params("subjectId"))
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// ListByTopic godoc
// @Summary Questions of a topic
// @Tags questions
// @Produce json
// @Param topicId path string true "Topic ID"
// @Success 200 {array} dto.QuestionResponse
// @Router /questions/topic/{topicId} [get]
func (h *QuestionHandler) ListByTopic(c *fiber.Ctx) error {
	questions, err := h.questions.ListByTopic(c.UserContext(), c.Params("topicId"))
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// ListByYear godoc
// @Summary Questions of an exam session
// @Description Sorted by paper then question number
// @Tags questions
// @Produce json
// @Param year path int true "Exam year"
// @Param month path string false "June or December"
// @Success 200 {array} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /questions/year/{year} [get]
// @Router /questions/year/{year}/{month} [get]
func (h *QuestionHandler) ListByYear(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("year", c.Params("year"))}
	}
	month := c.Params("month")
	if month != "" && month != "June" && month != "December" {
		return domain.ValidationErrors{domain.NewInvalidFormatError("month", month)}
	}
	questions, err := h.questions.ListByYear(c.UserContext(), year, month)
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// QuestionOwner resolves the question addressed by :id to the user that added it,
// for use with middleware.RequireOwner.
func QuestionOwner(questions service.QuestionService) middleware.OwnerLookup {
	return func(c *fiber.Ctx) (string, bool, error) {
		return questions.GetOwnerID(c.UserContext(), c.Params("id"))
	}
}
