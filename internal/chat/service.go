package chat

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

// The assistant is pinned to the store's domain; anything else gets the
// scripted refusal from the model itself.
const systemInstruction = "You are a helpful assistant for the StoreFront. " +
	"Only answer questions about furniture products sold in the store. " +
	"If asked about anything else, reply: 'Sorry, I can only answer questions about furniture products.'"

// FallbackAnswer is returned to the caller in place of an answer when the
// completion upstream fails.
const FallbackAnswer = "Sorry, there was an error processing your request."

const emptyAnswer = "Sorry, I couldn't answer your question."

type completionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service proxies storefront questions to the hosted completion API.
type Service interface {
	Ask(ctx context.Context, question string) (string, error)
}

type service struct {
	client completionClient
	logg   *logger.Logger
}

// NewService builds the chat proxy service.
func NewService(client completionClient, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, errors.New("completion client is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &service{client: client, logg: logg}, nil
}

// Ask forwards one question and returns the model's answer. Upstream
// failures come back as a dependency error; the transport layer substitutes
// FallbackAnswer so the storefront widget always has something to display.
func (s *service) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "question is required")
	}

	answer, err := s.client.Complete(ctx, systemInstruction, question)
	if err != nil {
		s.logg.Error(ctx, "completion upstream failed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "requesting completion")
	}
	if strings.TrimSpace(answer) == "" {
		return emptyAnswer, nil
	}
	return answer, nil
}
