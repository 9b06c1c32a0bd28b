// Package handler содержит HTTP-обработчики API сервиса возвратов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/refund-tracker/internal/model"
	"github.com/mmeshcher/refund-tracker/internal/repository"
	"github.com/mmeshcher/refund-tracker/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ListRefunds(ctx context.Context) ([]model.Refund, error)
	SeedRefunds(ctx context.Context) (int, error)
	CreateRefund(ctx context.Context, txnID, merchant string, amount float64, stage model.Stage) (model.Refund, error)
	AdvanceRefund(ctx context.Context, id string) (model.Refund, error)
	EscalateRefund(ctx context.Context, id string) (*model.Escalation, error)
	AddBill(ctx context.Context, bill model.Bill) (int, error)
	GetBills(ctx context.Context) ([]model.Bill, error)
}

// Handler реализует HTTP-обработчики API сервиса возвратов.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type countResponse struct {
	Msg   string `json:"msg"`
	Count int    `json:"count"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, errorResponse{Detail: detail})
}

// decodeBody разбирает JSON тела запроса. Несоответствие типов полей считается
// ошибкой формы запроса (422), остальные ошибки разбора дают 400.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return false
		}
		h.writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return false
	}
	return true
}

// Health сообщает, что сервис запущен.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListRefunds возвращает все возвраты.
func (h *Handler) ListRefunds(w http.ResponseWriter, r *http.Request) {
	refunds, err := h.service.ListRefunds(r.Context())
	if err != nil {
		h.logger.Error("list refunds error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if refunds == nil {
		refunds = []model.Refund{}
	}

	h.writeJSON(w, http.StatusOK, refunds)
}

// SeedRefunds заполняет реестр демонстрационными возвратами.
func (h *Handler) SeedRefunds(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.SeedRefunds(r.Context())
	if err != nil {
		h.logger.Error("seed refunds error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.writeJSON(w, http.StatusOK, countResponse{Msg: "seeded", Count: count})
}

type createRefundRequest struct {
	TxnID    *string  `json:"txn_id"`
	Merchant *string  `json:"merchant"`
	Amount   *float64 `json:"amount"`
	Stage    *string  `json:"stage"`
}

// CreateRefund создаёт возврат, пришедший от клиента.
func (h *Handler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	var req createRefundRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	err := validation.Required(
		validation.Field{Name: "txn_id", Present: req.TxnID != nil},
		validation.Field{Name: "merchant", Present: req.Merchant != nil},
		validation.Field{Name: "amount", Present: req.Amount != nil},
	)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	stage, err := validation.ParseStage(req.Stage)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	refund, err := h.service.CreateRefund(r.Context(), *req.TxnID, *req.Merchant, *req.Amount, stage)
	if err != nil {
		h.logger.Error("create refund error", zap.Error(err), zap.String("txnID", *req.TxnID))
		h.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.writeJSON(w, http.StatusOK, refund)
}

// AdvanceRefund переводит возврат на следующий этап.
func (h *Handler) AdvanceRefund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	refund, err := h.service.AdvanceRefund(r.Context(), id)
	if err != nil {
		h.refundError(w, err, "advance refund error", id)
		return
	}

	h.writeJSON(w, http.StatusOK, refund)
}

// EscalateRefund возвращает сводку для открытия спора по возврату.
func (h *Handler) EscalateRefund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	escalation, err := h.service.EscalateRefund(r.Context(), id)
	if err != nil {
		h.refundError(w, err, "escalate refund error", id)
		return
	}

	h.writeJSON(w, http.StatusOK, escalation)
}

func (h *Handler) refundError(w http.ResponseWriter, err error, msg, id string) {
	if errors.Is(err, repository.ErrRefundNotFound) {
		h.writeError(w, http.StatusNotFound, repository.ErrRefundNotFound.Error())
		return
	}
	h.logger.Error(msg, zap.Error(err), zap.String("refundID", id))
	h.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// GetBills возвращает все счета.
func (h *Handler) GetBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.GetBills(r.Context())
	if err != nil {
		h.logger.Error("get bills error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if bills == nil {
		bills = []model.Bill{}
	}

	h.writeJSON(w, http.StatusOK, bills)
}

type billRequest struct {
	ID     *string  `json:"id"`
	Title  *string  `json:"title"`
	Amount *float64 `json:"amount"`
	Status *string  `json:"status"`
}

// AddBill сохраняет новый счёт.
func (h *Handler) AddBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	err := validation.Required(
		validation.Field{Name: "id", Present: req.ID != nil},
		validation.Field{Name: "title", Present: req.Title != nil},
		validation.Field{Name: "amount", Present: req.Amount != nil},
		validation.Field{Name: "status", Present: req.Status != nil},
	)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	count, err := h.service.AddBill(r.Context(), model.Bill{
		ID:     *req.ID,
		Title:  *req.Title,
		Amount: *req.Amount,
		Status: *req.Status,
	})
	if err != nil {
		h.logger.Error("add bill error", zap.Error(err), zap.String("billID", *req.ID))
		h.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.writeJSON(w, http.StatusOK, countResponse{Msg: "bill added", Count: count})
}
