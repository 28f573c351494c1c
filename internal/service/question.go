package service

import (
	"context"
	"strings"

	"marketapi/internal/logger"
	"marketapi/internal/model"
	"marketapi/internal/notify"
)

// BriefRef identifies the brief a question list belongs to.
type BriefRef struct {
	Title             string `json:"title"`
	ID                int64  `json:"id"`
	InternalReference string `json:"internalReference"`
}

// QuestionCount holds the number of seller questions and published answers of a brief.
type QuestionCount struct {
	Questions int `json:"questions"`
	Answers   int `json:"answers"`
}

// Questions is the response of GET /brief/:id/questions.
type Questions struct {
	Questions     []model.BriefQuestion `json:"questions"`
	Brief         BriefRef              `json:"brief"`
	QuestionCount QuestionCount         `json:"questionCount"`
}

// Answers is the response of GET /brief/:id/answers.
type Answers struct {
	Answers       []model.BriefClarificationQuestion `json:"answers"`
	Brief         BriefRef                           `json:"brief"`
	QuestionCount QuestionCount                      `json:"questionCount"`
}

// Question is the response of GET /brief/:id/question.
type Question struct {
	Question model.BriefQuestion `json:"question"`
	Brief    BriefRef            `json:"brief"`
}

// PublishAnswerRequest is the body of POST /brief/:id/answers.
type PublishAnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionService manages seller questions and the buyer's public answers.
type QuestionService interface {
	Questions(ctx context.Context, briefID int64) (*Questions, error)
	Answers(ctx context.Context, briefID int64) (*Answers, error)
	// Question returns one seller question asked on the brief.
	Question(ctx context.Context, briefID, questionID int64) (*Question, error)
	PublishAnswer(ctx context.Context, briefID int64, user *model.User, req PublishAnswerRequest) (*model.BriefClarificationQuestion, error)
}

type questionService struct {
	repos Repositories
	rec   recorder
	perms permissions
}

// NewQuestionService constructs a QuestionService.
func NewQuestionService(repos Repositories, n notify.Notifier, log *logger.Logger) QuestionService {
	return &questionService{
		repos: repos,
		rec:   recorder{audit: repos.Audit, notifier: n, log: log.Component("question_service")},
		perms: permissions{teams: repos.Teams},
	}
}

func (s *questionService) brief(ctx context.Context, id int64) (*model.Brief, error) {
	b, err := s.repos.Briefs.FindByID(ctx, id)
	if err != nil {
		return nil, missing(err, "Invalid brief id '%d'", id)
	}
	return b, nil
}

func ref(b *model.Brief) BriefRef {
	return BriefRef{Title: b.Title(), ID: b.ID, InternalReference: b.InternalReference()}
}

func (s *questionService) Questions(ctx context.Context, briefID int64) (*Questions, error) {
	b, err := s.brief(ctx, briefID)
	if err != nil {
		return nil, err
	}
	qs, err := s.repos.Questions.ListQuestions(ctx, briefID)
	if err != nil {
		return nil, err
	}
	as, err := s.repos.Questions.ListAnswers(ctx, briefID)
	if err != nil {
		return nil, err
	}
	return &Questions{
		Questions:     qs,
		Brief:         ref(b),
		QuestionCount: QuestionCount{Questions: len(qs), Answers: len(as)},
	}, nil
}

func (s *questionService) Question(ctx context.Context, briefID, questionID int64) (*Question, error) {
	b, err := s.brief(ctx, briefID)
	if err != nil {
		return nil, err
	}
	q, err := s.repos.Questions.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, missing(err, "Invalid question id '%d'", questionID)
	}
	if q.BriefID != b.ID {
		return nil, notFound("Invalid question id '%d'", questionID)
	}
	return &Question{Question: *q, Brief: ref(b)}, nil
}

func (s *questionService) Answers(ctx context.Context, briefID int64) (*Answers, error) {
	b, err := s.brief(ctx, briefID)
	if err != nil {
		return nil, err
	}
	as, err := s.repos.Questions.ListAnswers(ctx, briefID)
	if err != nil {
		return nil, err
	}
	qs, err := s.repos.Questions.ListQuestions(ctx, briefID)
	if err != nil {
		return nil, err
	}
	return &Answers{
		Answers:       as,
		Brief:         ref(b),
		QuestionCount: QuestionCount{Questions: len(qs), Answers: len(as)},
	}, nil
}

func (s *questionService) PublishAnswer(ctx context.Context, briefID int64, user *model.User, req PublishAnswerRequest) (*model.BriefClarificationQuestion, error) {
	b, err := s.brief(ctx, briefID)
	if err != nil {
		return nil, err
	}
	if !b.HasUser(user.ID) {
		return nil, forbidden(msgBriefUnauthorised)
	}
	if err := s.perms.require(ctx, user, model.PermissionAnswerSellerQuestions); err != nil {
		return nil, err
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, invalid("Question is required")
	}
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		return nil, invalid("Answer is required")
	}

	saved, err := s.repos.Questions.CreateAnswer(ctx, &model.BriefClarificationQuestion{
		BriefID:     b.ID,
		UserID:      user.ID,
		Question:    question,
		Answer:      answer,
		PublishedAt: now(),
	})
	if err != nil {
		return nil, err
	}
	s.rec.record(ctx, model.AuditCreateBriefClarificationQuestion, user.EmailAddress, "BriefClarificationQuestion", saved.ID,
		map[string]any{"briefId": b.ID})
	return saved, nil
}
