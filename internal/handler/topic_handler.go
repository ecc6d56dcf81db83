package handler

import (
	"exam-hub/internal/dto"
	"exam-hub/internal/middleware"
	"exam-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TopicHandler handles topic hierarchy HTTP requests
type TopicHandler struct {
	topics service.TopicService
	bind   *middleware.RequestBinder
}

// NewTopicHandler creates a new TopicHandler instance
func NewTopicHandler(topics service.TopicService, bind *middleware.RequestBinder) *TopicHandler {
	return &TopicHandler{topics: topics, bind: bind}
}

// ListTopics godoc
// @Summary List topics
// @Tags topics
// @Produce json
// @Param subject query string false "Subject ID"
// @Param parent query string false "Parent topic ID, or null for root topics"
// @Success 200 {array} dto.TopicResponse
// @Router /topics [get]
func (h *TopicHandler) ListTopics(c *fiber.Ctx) error {
	var q dto.TopicListQuery
	if err := h.bind.Query(c, &q); err != nil {
		return err
	}
	topics, err := h.topics.ListTopics(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(topics)
}

// SearchTopics godoc
// @Summary Search topics by name
// @Description Case-insensitive substring match, at most 10 results
// @Tags topics
// @Produce json
// @Param q query string true "Search text"
// @Param subject query string false "Subject ID"
// @Success 200 {array} dto.TopicResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /topics/search [get]
func (h *TopicHandler) SearchTopics(c *fiber.Ctx) error {
	var q dto.TopicSearchQuery
	if err := h.bind.Query(c, &q); err != nil {
		return err
	}
	topics, err := h.topics.SearchTopics(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(topics)
}

// GetTopic godoc
// @Summary Get a topic
// @Tags topics
// @Produce json
// @Param id path string true "Topic ID"
// @Success 200 {object} dto.TopicResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /topics/{id} [get]
func (h *TopicHandler) GetTopic(c *fiber.Ctx) error {
	topic, err := h.topics.GetTopic(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(topic)
}

// CreateTopic godoc
// @Summary Create a topic
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topic body dto.CreateTopicRequest true "Topic"
// @Success 201 {object} dto.TopicResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /topics [post]
func (h *TopicHandler) CreateTopic(c *fiber.Ctx) error {
	var req dto.CreateTopicRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	topic, err := h.topics.CreateTopic(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

// UpdateTopic godoc
// @Summary Update or move a topic
// @Description Present fields are changed. parentTopic null makes the topic a root.
// @Tags topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Param topic body dto.UpdateTopicRequest true "Fields to change"
// @Success 200 {object} dto.TopicResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /topics/{id} [put]
func (h *TopicHandler) UpdateTopic(c *fiber.Ctx) error {
	var req dto.UpdateTopicRequest
	if err := h.bind.Body(c, &req); err != nil {
		return err
	}
	topic, err := h.topics.UpdateTopic(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(topic)
}

// DeleteTopic godoc
// @Summary Delete a topic
// @Description Fails while questions or subtopics reference the topic
// @Tags topics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /topics/{id} [delete]
func (h *TopicHandler) DeleteTopic(c *fiber.Ctx) error {
	if err := h.topics.DeleteTopic(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Topic removed"})
}

// GetTopicStats godoc
// @Summary Topic subtree statistics
// @Tags topics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Success 200 {object} dto.TopicStatsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /topics/{id}/stats [get]
func (h *TopicHandler) GetTopicStats(c *fiber.Ctx) error {
	stats, err := h.topics.GetTopicStats(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
