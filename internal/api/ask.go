package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clipstats/clipstats/internal/auth"
	"github.com/clipstats/clipstats/internal/pipeline"
	"github.com/clipstats/clipstats/internal/scalar"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string  `json:"answer"`
	Value  float64 `json:"value"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Answerer == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}

	var request askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	question := strings.TrimSpace(request.Question)
	if question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	if deps.Logger != nil {
		attrs := []any{slog.Int("question_len", len(question))}
		if identity, ok := auth.IdentityFromContext(r.Context()); ok {
			attrs = append(attrs, slog.String("chat_id", identity.ChatID))
		}
		deps.Logger.InfoContext(r.Context(), "question received", attrs...)
	}

	value, err := deps.Answerer.Answer(r.Context(), question)
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			status, code, retryable := classifyStage(stageErr.Stage)
			writeError(r.Context(), w, status, code, stageErr.UserMessage(), retryable, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "PIPELINE_ERROR", "Something went wrong. Please try again.", true, nil)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer: scalar.Render(value),
		Value:  value,
	})
}

func classifyStage(stage pipeline.Stage) (status int, code string, retryable bool) {
	switch stage {
	case pipeline.StageTranslate:
		return http.StatusBadGateway, "TRANSLATION_FAILED", true
	case pipeline.StageExtract:
		return http.StatusUnprocessableEntity, "EXTRACTION_FAILED", false
	case pipeline.StageValidate:
		return http.StatusUnprocessableEntity, "UNSAFE_QUERY", false
	case pipeline.StageExecute:
		return http.StatusInternalServerError, "EXECUTION_FAILED", true
	default:
		return http.StatusInternalServerError, "PIPELINE_ERROR", true
	}
}
