package handler

import (
	"exam-hub/internal/domain"
	"exam-hub/internal/middleware"
	"exam-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Store     *domain.Store
	Cache     domain.Cache
	Subjects  service.SubjectService
	Topics    service.TopicService
	Questions service.QuestionService
	Auth      service.AuthService
	Users     service.UserService
}

// RegisterRoutes mounts /health and the /api tree on app.
func RegisterRoutes(app fiber.Router, svc Services) {
	bind := middleware.NewRequestBinder()
	subjects := NewSubjectHandler(svc.Subjects, svc.Topics, bind)
	topics := NewTopicHandler(svc.Topics, bind)
	questions := NewQuestionHandler(svc.Questions, bind)
	auth := NewAuthHandler(svc.Auth, bind)
	users := NewUserHandler(svc.Users, bind)
	health := NewHealthHandler(svc.Store, svc.Cache)

	protected := middleware.Protected(svc.Auth)
	admin := middleware.RequireAdmin()

	app.Get("/health", health.Check)

	api := app.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", auth.Register)
	authGroup.Post("/login", auth.Login)
	authGroup.Get("/profile", protected, users.GetProfile)
	authGroup.Put("/profile", protected, users.UpdateProfile)

	// Question routes; fixed paths precede /:id
	q := api.Group("/questions")
	q.Get("/", questions.ListQuestions)
	q.Get("/practice/random", protected, questions.RandomPractice)
	q.Get("/subject/:subjectId", questions.ListBySubject)
	q.Get("/topic/:topicId", questions.ListByTopic)
	q.Get("/year/:year/:month?", questions.ListByYear)
	q.Post("/", protected, admin, questions.CreateQuestion)
	q.Get("/:id", questions.GetQuestion)
	q.Put("/:id", protected, admin, questions.UpdateQuestion)
	q.Delete("/:id", protected, admin, questions.DeleteQuestion)
	q.Post("/:id/answer", protected, questions.SubmitAnswer)

	// Subject routes
	s := api.Group("/subjects")
	s.Get("/", subjects.ListSubjects)
	s.Post("/", protected, admin, subjects.CreateSubject)
	s.Get("/:id", subjects.GetSubject)
	s.Put("/:id", protected, admin, subjects.UpdateSubject)
	s.Delete("/:id", protected, admin, subjects.DeleteSubject)
	s.Get("/:id/topics", subjects.ListSubjectTopics)
	s.Get("/:id/stats", protected, subjects.GetSubjectStats)

	// Topic routes
	t := api.Group("/topics")
	t.Get("/", topics.ListTopics)
	t.Get("/search", topics.SearchTopics)
	t.Post("/", protected, admin, topics.CreateTopic)
	t.Get("/:id", topics.GetTopic)
	t.Put("/:id", protected, admin, topics.UpdateTopic)
	t.Delete("/:id", protected, admin, topics.DeleteTopic)
	t.Get("/:id/stats", protected, topics.GetTopicStats)
}
