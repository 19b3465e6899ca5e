package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tasukuchiba/chat_message_api/internal/models"
	"github.com/tasukuchiba/chat_message_api/internal/service"
	"github.com/tasukuchiba/chat_message_api/internal/storage"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

// MessageHandler はメッセージ関連のHTTPリクエストを処理する
type MessageHandler struct {
	service  *service.MessageService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMessageHandler は新しいMessageHandlerを作成する
func NewMessageHandler(svc *service.MessageService, logger *zap.Logger) *MessageHandler {
	v := validator.New()
	// エラーメッセージではGoのフィールド名ではなくjsonタグ名を使う
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &MessageHandler{service: svc, validate: v, logger: logger}
}

// CreateMessageRequest はメッセージ作成リクエストのボディ。
// contentは必須だが空文字列は許容する
type CreateMessageRequest struct {
	MessageID string    `json:"message_id" validate:"required"`
	SessionID string    `json:"session_id" validate:"required"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Sender    string    `json:"sender" validate:"required,oneof=user system"`
}

// listQuery はセッション取得・検索共通のクエリパラメータ
type listQuery struct {
	Sender string `validate:"omitempty,oneof=user system"`
	Skip   int    `validate:"min=0"`
	Limit  int    `validate:"min=0"`
}

// HandleMessages は /api/messages/ 配下のエンドポイントのハンドラー
func (h *MessageHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/messages"), "/")

	switch {
	case rest == "":
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", "")
			return
		}
		h.createMessage(w, r)

	case rest == "search":
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", "")
			return
		}
		h.searchMessages(w, r)

	default:
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", "")
			return
		}
		h.listBySession(w, r, rest)
	}
}

// createMessage は新しいメッセージを受け付けて処理する
func (h *MessageHandler) createMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, CodeInvalidFormat,
			"invalid request body", err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	view, err := h.service.Submit(service.SubmitRequest{
		MessageID: req.MessageID,
		SessionID: req.SessionID,
		Content:   req.Content,
		Timestamp: req.Timestamp,
		Sender:    req.Sender,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSender):
			WriteError(w, http.StatusUnprocessableEntity, CodeInvalidFormat,
				"validation error on field 'sender'", err.Error())
		case errors.Is(err, storage.ErrDuplicateID):
			WriteError(w, http.StatusConflict, CodeDuplicate,
				fmt.Sprintf("message_id '%s' already exists", req.MessageID), "")
		default:
			h.logger.Error("failed to create message", zap.Error(err))
			WriteError(w, http.StatusInternalServerError, CodeInternal,
				"internal server error", "")
		}
		return
	}

	WriteSuccess(w, http.StatusCreated, view)
}

// listBySession は指定セッションのメッセージを取得する
func (h *MessageHandler) listBySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	q, ok := h.parseListQuery(w, r)
	if !ok {
		return
	}

	messages, err := h.service.ListBySession(sessionID, q.Sender, q.Skip, q.Limit)
	if err != nil {
		h.logger.Error("failed to list messages",
			zap.Error(err),
			zap.String("sessionID", sessionID))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "internal server error", "")
		return
	}

	WriteSuccess(w, http.StatusOK, toViews(messages))
}

// searchMessages はcontentの部分一致でメッセージを検索する
func (h *MessageHandler) searchMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		WriteError(w, http.StatusUnprocessableEntity, CodeInvalidFormat,
			"validation error on field 'query'", "query is required and must not be empty")
		return
	}

	q, ok := h.parseListQuery(w, r)
	if !ok {
		return
	}

	messages, err := h.service.Search(query, q.Skip, q.Limit)
	if err != nil {
		h.logger.Error("failed to search messages", zap.Error(err), zap.String("query", query))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "internal server error", "")
		return
	}

	WriteSuccess(w, http.StatusOK, toViews(messages))
}

// parseListQuery はsender/skip/limitクエリパラメータを解析・検証する。
// 不正な場合はエラーレスポンスを書き込んでfalseを返す
func (h *MessageHandler) parseListQuery(w http.ResponseWriter, r *http.Request) (listQuery, bool) {
	q := listQuery{
		Sender: r.URL.Query().Get("sender"),
		Skip:   defaultSkip,
		Limit:  defaultLimit,
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"skip", &q.Skip}, {"limit", &q.Limit}} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, CodeInvalidFormat,
				fmt.Sprintf("validation error on field '%s'", p.name), "must be an integer")
			return listQuery{}, false
		}
		*p.dst = n
	}

	if err := h.validate.Struct(q); err != nil {
		h.writeValidationError(w, err)
		return listQuery{}, false
	}
	return q, true
}

// writeValidationError は最初の検証エラーをフィールド名つきの422に変換する
func (h *MessageHandler) writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		WriteError(w, http.StatusUnprocessableEntity, CodeInvalidFormat,
			fmt.Sprintf("validation error on field '%s'", strings.ToLower(first.Field())),
			fmt.Sprintf("failed on the '%s' rule", first.Tag()))
		return
	}
	WriteError(w, http.StatusUnprocessableEntity, CodeInvalidFormat, "validation error", err.Error())
}

// toViews はストレージのMessageをレスポンス用のビューに変換する
func toViews(messages []models.Message) []models.MessageView {
	return lo.Map(messages, func(msg models.Message, _ int) models.MessageView {
		return msg.View()
	})
}
