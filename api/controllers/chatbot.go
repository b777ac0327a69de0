package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/vrapolinario/AIforITOps/api/responses"
	"github.com/vrapolinario/AIforITOps/internal/chat"
	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
)

type chatbotRequest struct {
	Question string `json:"question"`
}

type chatbotResponse struct {
	Answer string `json:"answer"`
}

// Chatbot proxies one question to the completion upstream. The endpoint
// speaks the storefront widget's bare {question}/{answer} wire format
// rather than the envelope the rest of the API uses, and a failed upstream
// still yields an answer body so the widget always has text to show.
func Chatbot(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload chatbotRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		answer, err := svc.Ask(r.Context(), payload.Question)
		if err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && typed.Code() == pkgerrors.CodeValidation {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			logg.Error(r.Context(), "chatbot request failed", err)
			writeChatJSON(w, http.StatusInternalServerError, chatbotResponse{Answer: chat.FallbackAnswer})
			return
		}

		writeChatJSON(w, http.StatusOK, chatbotResponse{Answer: answer})
	}
}

func writeChatJSON(w http.ResponseWriter, status int, payload chatbotResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
