package handler

import (
	"strconv"

	"exam-hub/internal/domain"
	"exam-hub/internal/dto"
	"exam-hub/internal/middleware"
	"exam-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubjectHandler handles subject-related HTTP requests
type SubjectHandler struct {
	subjects service.SubjectService
	topics   service.TopicService
	bind     *middleware.RequestBinder
}

// NewSubjectHandler creates a new SubjectHandler instance
func NewSubjectHandler(subjects service.SubjectService, topics service.TopicService, bind *middleware.RequestBinder) *SubjectHandler {
	return &SubjectHandler{subjects: subjects, topics: topics, bind: bind}
}

// ListSubjects godoc
// @Summary List subjects
// @Description Returns all subjects sorted by name
// @Tags subjects
// @Produce json
// @Param isCore query bool false "Only core (true) or elective (false) subjects"
// @Success 200 {array} dto.SubjectResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /subjects [get]
func (h *SubjectHandler) ListSubjects(c *fiber.Ctx) error {
	var isCore *bool
	if raw := c.Query("isCore"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.ValidationErrors{domain.NewInvalidFormatError("isCore", raw)}
		}
		isCore = &v
	}
	subjects, err := h.subjects.ListSubjects(c.UserContext(), isCore)
	if err != nil {
		return err
	}
	return c.JSON(subjects)
}

// GetSubject godoc
// @Summary Get a subject
// @Tags subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} dto.SubjectResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subjects/{id} [get]
func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	subject, err := h.subjects.GetSubject(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(subject)
}

// CreateSubject godoc
// @Summary Create a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subject body dto.CreateSubjectRequest true "Subject"
// @Success 201 {object} dto.SubjectResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subjects [post]
func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	var req dto.CreateSubjectRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	subject, err := h.subjects.CreateSubject(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(subject)
}

// UpdateSubject godoc
// @Summary Update a subject
// @Description Only the fields present in the body are changed
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Param subject body dto.UpdateSubjectRequest true "Fields to change"
// @Success 200 {object} dto.SubjectResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subjects/{id} [put]
func (h *SubjectHandler) UpdateSubject(c *fiber.Ctx) error {
	var req dto.UpdateSubjectRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	subject, err := h.subjects.UpdateSubject(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(subject)
}

// DeleteSubject godoc
// @Summary Delete a subject
// @Description Fails while topics still belong to the subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	if err := h.subjects.DeleteSubject(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Subject removed"})
}

// ListSubjectTopics godoc
// @Summary List a subject's topics
// @Tags subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Param parent query string false "Parent topic ID, or null for root topics"
// @Success 200 {array} dto.TopicResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subjects/{id}/topics [get]
func (h *SubjectHandler) ListSubjectTopics(c *fiber.Ctx) error {
	topics, err := h.topics.ListSubjectTopics(c.UserContext(), c.Params("id"), c.Query("parent"))
	if err != nil {
		return err
	}
	return c.JSON(topics)
}

// GetSubjectStats godoc
// @Summary Subject statistics
// @Description Question counts by year and difficulty plus topic counters
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Success 200 {object} dto.SubjectStatsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subjects/{id}/stats [get]
func (h *SubjectHandler) GetSubjectStats(c *fiber.Ctx) error {
	stats, err := h.subjects.GetSubjectStats(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
