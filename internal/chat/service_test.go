package chat

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

type stubCompleter struct {
	answer string
	err    error

	system string
	user   string
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	return s.answer, s.err
}

func newTestService(t *testing.T, client *stubCompleter) Service {
	t.Helper()
	svc, err := NewService(client, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAskForwardsQuestionWithSystemInstruction(t *testing.T) {
	t.Parallel()

	client := &stubCompleter{answer: "We sell oak tables."}
	svc := newTestService(t, client)

	answer, err := svc.Ask(context.Background(), "Do you sell tables?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "We sell oak tables." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if client.system != systemInstruction {
		t.Fatalf("unexpected system instruction %q", client.system)
	}
	if client.user != "Do you sell tables?" {
		t.Fatalf("unexpected user turn %q", client.user)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCompleter{})

	_, err := svc.Ask(context.Background(), "   ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAskWrapsUpstreamFailure(t *testing.T) {
	t.Parallel()

	client := &stubCompleter{err: errors.New("upstream 500")}
	svc := newTestService(t, client)

	_, err := svc.Ask(context.Background(), "Do you sell tables?")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestAskSubstitutesEmptyAnswer(t *testing.T) {
	t.Parallel()

	client := &stubCompleter{answer: "  "}
	svc := newTestService(t, client)

	answer, err := svc.Ask(context.Background(), "Do you sell tables?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != emptyAnswer {
		t.Fatalf("unexpected answer %q", answer)
	}
}
