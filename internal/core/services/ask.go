package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure SafetyAdvisorService implements the interface.
var _ driving.SafetyAdvisor = (*SafetyAdvisorService)(nil)

const defaultSafetySystemPrompt = `You are a pharmacist assistant answering medication safety questions.
Base your answer on the provided drug safety records. If the records do not
cover the question, say so and recommend asking a pharmacist or doctor.
Answer in the language of the question.`

const defaultSafetyAnswerPrompt = "Drug safety records:\n" + driven.PlaceholderRecords +
	"\n\nQuestion: " + driven.PlaceholderQuestion

// SafetyAdvisorService answers safety questions with retrieved records as context.
type SafetyAdvisorService struct {
	retriever   driving.SafetyRetriever
	llm         driven.LLMService
	promptStore driven.PromptStore
	k           int
}

// NewSafetyAdvisorService creates an advisor. llm may be nil, in which case
// Ask reports domain.ErrLLMUnavailable.
func NewSafetyAdvisorService(retriever driving.SafetyRetriever, llm driven.LLMService) *SafetyAdvisorService {
	return &SafetyAdvisorService{
		retriever: retriever,
		llm:       llm,
		k:         domain.DefaultQuestionK,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *SafetyAdvisorService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ask retrieves records for the question and asks the LLM to answer.
// Retrieval failures leave the context empty rather than failing the call.
func (s *SafetyAdvisorService) Ask(ctx context.Context, question string) (*domain.SafetyAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	docs, err := s.retriever.SearchByQuestion(ctx, question, s.k)
	if err != nil {
		logger.Warn("safety context unavailable, answering without it: %v", err)
		docs = []domain.SafetyDocument{}
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: s.loadPrompt(driven.PromptSafetySystem, defaultSafetySystemPrompt)},
		{Role: driven.RoleUser, Content: renderAnswerPrompt(
			s.loadPrompt(driven.PromptSafetyAnswer, defaultSafetyAnswerPrompt),
			FormatSafetyContext(docs), question,
		)},
	}

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 800, Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.SafetyAnswer{
		Question: question,
		Answer:   strings.TrimSpace(answer),
		Sources:  docs,
	}, nil
}

// FormatSafetyContext renders documents as a numbered list for a prompt.
func FormatSafetyContext(docs []domain.SafetyDocument) string {
	if len(docs) == 0 {
		return "(no matching records)"
	}
	var b strings.Builder
	for i := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, docs[i].Content)
	}
	return b.String()
}

// renderAnswerPrompt fills the answer template. A template missing either
// placeholder is replaced by the default.
func renderAnswerPrompt(tmpl, records, question string) string {
	if !strings.Contains(tmpl, driven.PlaceholderRecords) || !strings.Contains(tmpl, driven.PlaceholderQuestion) {
		logger.Warn("prompt %s lacks %s or %s; using the default",
			driven.PromptSafetyAnswer, driven.PlaceholderRecords, driven.PlaceholderQuestion)
		tmpl = defaultSafetyAnswerPrompt
	}
	return strings.NewReplacer(
		driven.PlaceholderRecords, records,
		driven.PlaceholderQuestion, question,
	).Replace(tmpl)
}

func (s *SafetyAdvisorService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}
