package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/expert-consult/internal/agent"
	"github.com/ashureev/expert-consult/internal/domain"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// User-facing messages.
const (
	msgEmptyInput    = "質問を入力してください。"
	msgGenericError  = "LLM 呼び出し中にエラーが発生しました。API キーやネットワーク設定を確認してください。"
	msgConfigHint    = "LLM クライアントの設定に問題があります。API キーが設定されているか確認してください。"
	msgAuthHint      = "API キーが無効か、権限がありません。"
	msgUpstreamHint  = "LLM サービスがリクエストを受け付けませんでした。しばらくしてから再度お試しください。"
	msgTransportHint = "LLM サービスに接続できませんでした。ネットワーク設定を確認してください。"
	placeholderText  = "例）フルマラソンでサブ4を目指したいのですが、3ヶ月でどんな練習をすべきですか？\n" +
		"例）新規開拓営業で、初回訪問のヒアリングで意識すべきポイントを教えてください。"
)

type personaOption struct {
	Code     string
	Slug     string
	Label    string
	Selected bool
}

type pageData struct {
	Personas    []personaOption
	Placeholder string
	Message     string
	Warning     string
	Error       string
	ErrorHint   string
	ErrorDetail string
	Answer      template.HTML
}

func newPageData(selected domain.Persona, message string) pageData {
	options := lo.Map(domain.Personas(), func(p domain.Persona, _ int) personaOption {
		return personaOption{
			Code:     p.Code(),
			Slug:     p.Slug(),
			Label:    p.Label(),
			Selected: p == selected,
		}
	})
	return pageData{
		Personas:    options,
		Placeholder: placeholderText,
		Message:     message,
	}
}

// errorHint picks the follow-up line shown under the generic error banner.
func errorHint(err error) string {
	switch agent.KindOf(err) {
	case agent.ErrorKindConfig:
		return msgConfigHint
	case agent.ErrorKindTransport:
		return msgTransportHint
	case agent.ErrorKindUpstream:
		if agent.IsAuthError(err) {
			return msgAuthHint
		}
		return msgUpstreamHint
	default:
		return ""
	}
}

// errorStatus maps a generator failure to an HTTP status for the JSON API.
func errorStatus(err error) int {
	switch agent.KindOf(err) {
	case agent.ErrorKindConfig:
		return http.StatusServiceUnavailable
	case agent.ErrorKindTransport:
		return http.StatusGatewayTimeout
	case agent.ErrorKindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ShowForm handles GET / requests.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData(domain.DefaultPersona, ""))
}

// SubmitForm handles POST / form submissions.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	persona := domain.ResolvePersona(r.PostFormValue("persona"))
	message := r.PostFormValue("message")
	data := newPageData(persona, message)

	if strings.TrimSpace(message) == "" {
		data.Warning = msgEmptyInput
		h.render(w, http.StatusOK, data)
		return
	}

	answer, err := h.consult(r, "form", persona, message)
	if err != nil {
		data.Error = msgGenericError
		data.ErrorHint = errorHint(err)
		data.ErrorDetail = err.Error()
		h.render(w, http.StatusOK, data)
		return
	}

	rendered, err := renderAnswer(answer)
	if err != nil {
		slog.Warn("Falling back to plain answer", "error", err)
		rendered = template.HTML(template.HTMLEscapeString(answer)) //nolint:gosec // escaped above
	}
	data.Answer = rendered
	h.render(w, http.StatusOK, data)
}

// Consult handles POST /api/consult requests.
func (h *Handler) Consult(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req agent.ConsultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	persona := domain.ResolvePersona(req.Persona)
	consultationID := uuid.NewString()

	answer, err := h.consultWithID(r, consultationID, "api", persona, req.Message)
	if err != nil {
		JSON(w, errorStatus(err), map[string]string{
			"error":           msgGenericError,
			"kind":            agent.KindOf(err).String(),
			"detail":          err.Error(),
			"consultation_id": consultationID,
		})
		return
	}

	JSON(w, http.StatusOK, agent.ConsultResponse{
		ConsultationID: consultationID,
		Persona:        persona.Slug(),
		Answer:         answer,
	})
}

// ListPersonas handles GET /api/personas requests.
func (h *Handler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	out := lo.Map(domain.Personas(), func(p domain.Persona, _ int) map[string]string {
		return map[string]string{
			"code":  p.Code(),
			"slug":  p.Slug(),
			"label": p.Label(),
		}
	})
	JSON(w, http.StatusOK, map[string]interface{}{
		"personas": out,
		"default":  domain.DefaultPersona.Slug(),
	})
}

func (h *Handler) consult(r *http.Request, channel string, persona domain.Persona, message string) (string, error) {
	return h.consultWithID(r, uuid.NewString(), channel, persona, message)
}

// consultWithID runs one generation and records it in the conversation log.
func (h *Handler) consultWithID(r *http.Request, consultationID, channel string, persona domain.Persona, message string) (string, error) {
	reqID := chiMiddleware.GetReqID(r.Context())

	slog.Info("Consultation request",
		"consultation_id", consultationID,
		"request_id", reqID,
		"channel", channel,
		"persona", persona.Slug(),
		"message_length", len(message),
	)
	h.log.Log(agent.ConversationLogEvent{
		ConsultationID: consultationID,
		Persona:        persona.Slug(),
		Channel:        channel,
		Direction:      "outbound",
		EventType:      "consult_user_message",
		ContentRaw:     message,
		Meta:           map[string]any{"request_id": reqID},
	})

	start := time.Now()
	answer, err := h.generate(r, message, persona)
	if err != nil {
		slog.Error("Consultation failed",
			"consultation_id", consultationID,
			"request_id", reqID,
			"kind", agent.KindOf(err).String(),
			"error", err,
		)
		h.log.Log(agent.ConversationLogEvent{
			ConsultationID: consultationID,
			Persona:        persona.Slug(),
			Channel:        channel,
			Direction:      "inbound",
			EventType:      "consult_error",
			ContentRaw:     err.Error(),
			Meta: map[string]any{
				"request_id":  reqID,
				"kind":        agent.KindOf(err).String(),
				"status_code": agent.StatusCodeOf(err),
				"duration_ms": time.Since(start).Milliseconds(),
			},
		})
		return "", err
	}

	h.log.Log(agent.ConversationLogEvent{
		ConsultationID: consultationID,
		Persona:        persona.Slug(),
		Channel:        channel,
		Direction:      "inbound",
		EventType:      "consult_expert_answer",
		ContentRaw:     answer,
		Meta: map[string]any{
			"request_id":  reqID,
			"duration_ms": time.Since(start).Milliseconds(),
		},
	})
	return answer, nil
}

func (h *Handler) generate(r *http.Request, message string, persona domain.Persona) (string, error) {
	if h.generator == nil {
		return "", h.generatorErr
	}
	return h.generator.Generate(r.Context(), message, persona)
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		slog.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write page", "error", err)
	}
}
