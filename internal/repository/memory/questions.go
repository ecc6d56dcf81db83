package memory

import (
	"context"
	"sort"
	"time"

	"exam-hub/internal/domain"
	"exam-hub/internal/util"
)

type QuestionStore struct {
	d *data
}

func (s *QuestionStore) Create(ctx context.Context, question *domain.Question) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	if question.ID == "" {
		question.ID = util.NewULID()
	}
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now
	question.Stats.Recalculate()
	s.d.questions[question.ID] = cloneQuestion(question)
	return nil
}

func (s *QuestionStore) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	if question, ok := s.d.questions[id]; ok {
		return cloneQuestion(question), nil
	}
	return nil, nil
}

func (s *QuestionStore) Find(ctx context.Context, filter domain.QuestionFilter, order domain.QuestionOrder, page domain.Page) ([]*domain.Question, error) {
	matches := s.matching(filter)
	sortQuestions(matches, order)

	if page.Offset < 0 || page.Offset >= len(matches) {
		return []*domain.Question{}, nil
	}
	matches = matches[page.Offset:]
	if page.Limit > 0 && len(matches) > page.Limit {
		matches = matches[:page.Limit]
	}
	return matches, nil
}

func (s *QuestionStore) Count(ctx context.Context, filter domain.QuestionFilter) (int, error) {
	return len(s.matching(filter)), nil
}

func (s *QuestionStore) CountByYear(ctx context.Context, filter domain.QuestionFilter) ([]domain.YearCount, error) {
	buckets := make(map[int]int)
	for _, q := range s.matching(filter) {
		buckets[q.Year]++
	}
	out := make([]domain.YearCount, 0, len(buckets))
	for year, n := range buckets {
		out = append(out, domain.YearCount{Year: year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (s *QuestionStore) CountByDifficulty(ctx context.Context, filter domain.QuestionFilter) ([]domain.DifficultyCount, error) {
	buckets := make(map[string]int)
	for _, q := range s.matching(filter) {
		buckets[q.Difficulty]++
	}
	out := make([]domain.DifficultyCount, 0, len(buckets))
	for difficulty, n := range buckets {
		out = append(out, domain.DifficultyCount{Difficulty: difficulty, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Difficulty < out[j].Difficulty })
	return out, nil
}

// Update keeps the stored attempt counters.
func (s *QuestionStore) Update(ctx context.Context, question *domain.Question) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	existing, ok := s.d.questions[question.ID]
	if !ok {
		return notFound("question", question.ID)
	}
	question.Stats = existing.Stats
	question.AddedBy = existing.AddedBy
	question.CreatedAt = existing.CreatedAt
	question.UpdatedAt = time.Now()
	s.d.questions[question.ID] = cloneQuestion(question)
	return nil
}

func (s *QuestionStore) IncrementAttempts(ctx context.Context, id string, correct bool) (*domain.QuestionStats, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	question, ok := s.d.questions[id]
	if !ok {
		return nil, notFound("question", id)
	}
	question.Stats.Record(correct)
	stats := question.Stats
	return &stats, nil
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	if _, ok := s.d.questions[id]; !ok {
		return notFound("question", id)
	}
	delete(s.d.questions, id)
	return nil
}

func (s *QuestionStore) matching(filter domain.QuestionFilter) []*domain.Question {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()

	var topics map[string]bool
	if len(filter.TopicIDs) > 0 {
		topics = make(map[string]bool, len(filter.TopicIDs))
		for _, id := range filter.TopicIDs {
			topics[id] = true
		}
	}

	out := []*domain.Question{}
	for _, q := range s.d.questions {
		switch {
		case filter.SubjectID != "" && q.SubjectID != filter.SubjectID,
			topics != nil && !topics[q.TopicID],
			filter.Year != 0 && q.Year != filter.Year,
			filter.Month != "" && q.Month != filter.Month,
			filter.Paper != "" && q.Paper != filter.Paper,
			filter.Difficulty != "" && q.Difficulty != filter.Difficulty,
			filter.VerifiedOnly && !q.IsVerified:
			continue
		}
		out = append(out, cloneQuestion(q))
	}
	return out
}

func sortQuestions(questions []*domain.Question, order domain.QuestionOrder) {
	sort.Slice(questions, func(i, j int) bool {
		a, b := questions[i], questions[j]
		switch order {
		case domain.OrderPaperAscNumberAsc:
			if a.Paper != b.Paper {
				return a.Paper < b.Paper
			}
		case domain.OrderCreation:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		default:
			if a.Year != b.Year {
				return a.Year > b.Year
			}
		}
		if a.QuestionNumber != b.QuestionNumber {
			return a.QuestionNumber < b.QuestionNumber
		}
		return a.ID < b.ID
	})
}

func cloneQuestion(q *domain.Question) *domain.Question {
	c := *q
	c.Options = append([]domain.Option{}, q.Options...)
	c.Tags = cloneStrings(q.Tags)
	return &c
}
