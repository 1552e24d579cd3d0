package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/gateway"
)

var errOptionsRequired = errors.New("dropdown and checkbox questions need at least one option")

type QuestionInput struct {
	QuestionText    string                  `json:"questionText"`
	QuestionType    domain.QuestionType     `json:"questionType"`
	Category        string                  `json:"category,omitempty"`
	IsRequired      bool                    `json:"isRequired"`
	DisplayOrder    int                     `json:"displayOrder"`
	ValidationRules *domain.ValidationRules `json:"validationRules,omitempty"`
}

func (in *QuestionInput) Validate() error {
	err := validation.ValidateStruct(
		in,
		validation.Field(&in.QuestionText, validation.Required, validation.Length(1, 500)),
		validation.Field(&in.QuestionType, validation.Required, validation.In(
			domain.QuestionTypeText,
			domain.QuestionTypeSelect,
			domain.QuestionTypeCheckbox,
		)),
		validation.Field(&in.DisplayOrder, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	if in.QuestionType != domain.QuestionTypeText && (in.ValidationRules == nil || len(in.ValidationRules.Options) == 0) {
		return errOptionsRequired
	}

	return nil
}

type QuestionService struct {
	gw Requester
}

func NewQuestionService(gw Requester) *QuestionService {
	return &QuestionService{
		gw: gw,
	}
}

func (s *QuestionService) List(ctx context.Context, eventID int64) ([]domain.EventQuestion, error) {
	questions := []domain.EventQuestion{}
	if err := s.gw.DoJSON(ctx, http.MethodGet, questionsPath(eventID), nil, &questions, gateway.Public()); err != nil {
		return nil, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return questions, nil
}

func (s *QuestionService) Create(ctx context.Context, eventID int64, in QuestionInput) (domain.EventQuestion, error) {
	if err := in.Validate(); err != nil {
		return domain.EventQuestion{}, err
	}

	var question domain.EventQuestion
	if err := s.gw.DoJSON(ctx, http.MethodPost, questionsPath(eventID), in, &question); err != nil {
		return domain.EventQuestion{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return question, nil
}

func (s *QuestionService) Update(ctx context.Context, eventID, eventQuestionID int64, in QuestionInput) (domain.EventQuestion, error) {
	if err := in.Validate(); err != nil {
		return domain.EventQuestion{}, err
	}

	var question domain.EventQuestion
	if err := s.gw.DoJSON(ctx, http.MethodPut, questionPath(eventID, eventQuestionID), in, &question); err != nil {
		return domain.EventQuestion{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return question, nil
}

func (s *QuestionService) Delete(ctx context.Context, eventID, eventQuestionID int64) error {
	if _, err := s.gw.Do(ctx, http.MethodDelete, questionPath(eventID, eventQuestionID), nil); err != nil {
		return fmt.Errorf("s.gw.Do -> %w", err)
	}

	return nil
}

func questionsPath(eventID int64) string {
	return eventPath(eventID) + "/questions"
}

func questionPath(eventID, eventQuestionID int64) string {
	return fmt.Sprintf("%s/%d", questionsPath(eventID), eventQuestionID)
}
