// Package chat holds the retrieval-augmented conversation session.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"docubot/internal/helper"
	"docubot/internal/models"
)

// ErrBusy rejects a reentrant Ask while a response is pending.
var ErrBusy = errors.New("session is awaiting a response")

// Retriever fetches grounding chunks for the latest question.
type Retriever interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]models.Match, error)
}

// Generator produces the grounded answer.
type Generator interface {
	GenerateText(ctx context.Context, messages []llms.MessageContent) (string, error)
}

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// Session keeps conversation memory across turns. One question is
// processed at a time: Ask moves the session to awaiting and back to
// idle on completion, success or failure.
type Session struct {
	id        string
	retriever Retriever
	llm       Generator
	topK      int

	mu       sync.Mutex
	awaiting bool
	memory   []Turn
}

func NewSession(retriever Retriever, llm Generator, topK int) *Session {
	if topK <= 0 {
		topK = 5
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		id = "session"
	}
	return &Session{id: id, retriever: retriever, llm: llm, topK: topK}
}

func (s *Session) ID() string { return s.id }

// Ask retrieves grounding context for the question, composes a prompt
// with the conversation so far, and records the completed turn. An
// empty retrieval is not an error: a greeting turn has no grounding
// and must still be answerable.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.awaiting = true
	history := make([]Turn, len(s.memory))
	copy(history, s.memory)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.awaiting = false
		s.mu.Unlock()
	}()

	matches, err := s.retriever.SimilaritySearch(ctx, question, s.topK)
	if err != nil {
		log.Warn().Err(err).Str("session", s.id).Msg("Retrieval failed, answering without context")
		matches = nil
	}
	if len(matches) == 0 {
		log.Info().Str("session", s.id).Msg("No documents retrieved for question")
	}

	answer, err := s.llm.GenerateText(ctx, composePrompt(history, matches, question))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	s.mu.Lock()
	s.memory = append(s.memory, Turn{Question: question, Answer: answer})
	s.mu.Unlock()
	return answer, nil
}

// ClearHistory resets the conversation memory. The vector index is
// untouched.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.memory = nil
	s.mu.Unlock()
	log.Debug().Str("session", s.id).Msg("Chat history cleared")
}

// History returns a copy of the completed turns.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.memory))
	copy(out, s.memory)
	return out
}

func composePrompt(history []Turn, matches []models.Match, question string) []llms.MessageContent {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, models.ChatSystemPrompt),
	}
	for _, turn := range history {
		messages = append(messages,
			llms.TextParts(llms.ChatMessageTypeHuman, turn.Question),
			llms.TextParts(llms.ChatMessageTypeAI, turn.Answer),
		)
	}

	var context strings.Builder
	for _, m := range matches {
		context.WriteString(m.Text)
		context.WriteString("\n\n")
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman,
		fmt.Sprintf(models.ChatPromptTemplate, context.String(), question)))
	return messages
}
