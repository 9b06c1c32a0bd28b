// Package service реализует бизнес-логику сервиса возвратов.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmeshcher/refund-tracker/internal/model"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	PutRefund(ctx context.Context, refund model.Refund) (model.Refund, error)
	GetRefund(ctx context.Context, id string) (model.Refund, error)
	ListRefunds(ctx context.Context) ([]model.Refund, error)
	CountRefunds(ctx context.Context) (int, error)
	UpdateRefund(ctx context.Context, id string, fn func(*model.Refund) error) (model.Refund, error)
	AddBill(ctx context.Context, bill model.Bill) (int, error)
	ListBills(ctx context.Context) ([]model.Bill, error)
}

// SeedRefund описывает одну демонстрационную запись для заполнения реестра.
type SeedRefund struct {
	TxnID    string
	Merchant string
	Amount   float64
	Stage    model.Stage
}

// DemoRefunds содержит записи, которые создаёт SeedRefunds.
var DemoRefunds = []SeedRefund{
	{TxnID: "TXN-1001", Merchant: "Amazon", Amount: 1299.0, Stage: model.StageGatewayCredited},
	{TxnID: "TXN-1002", Merchant: "Swiggy", Amount: 389.0, Stage: model.StageInitiated},
	{TxnID: "TXN-1003", Merchant: "BookMyShow", Amount: 499.0, Stage: model.StageBankCredited},
}

// Service содержит бизнес-логику реестра возвратов.
type Service struct {
	repo  Repository
	newID func() string
}

// NewService создаёт новый сервис поверх указанного репозитория.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		newID: uuid.NewString,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RefundIDForTxn детерминированно выводит идентификатор возврата из идентификатора транзакции.
// Используется UUID версии 5 в пространстве имён DNS.
func RefundIDForTxn(txnID string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(txnID)).String()
}

func newRefund(id, txnID, merchant string, amount float64, stage model.Stage) model.Refund {
	return model.Refund{
		ID:       id,
		TxnID:    txnID,
		Merchant: merchant,
		Amount:   amount,
		Stage:    stage,
		History:  model.DeriveHistory(stage),
	}
}

// UpsertRefundByTxn создаёт или полностью заменяет возврат с идентификатором, выведенным из txnID.
func (s *Service) UpsertRefundByTxn(ctx context.Context, txnID, merchant string, amount float64, stage model.Stage) (model.Refund, error) {
	r := newRefund(RefundIDForTxn(txnID), txnID, merchant, amount, stage)
	stored, err := s.repo.PutRefund(ctx, r)
	if err != nil {
		return model.Refund{}, fmt.Errorf("upsert refund %s: %w", txnID, err)
	}
	return stored, nil
}

// CreateRefund создаёт новый возврат со случайным идентификатором.
// Несколько возвратов могут ссылаться на одну и ту же транзакцию.
func (s *Service) CreateRefund(ctx context.Context, txnID, merchant string, amount float64, stage model.Stage) (model.Refund, error) {
	r := newRefund(s.newID(), txnID, merchant, amount, stage)
	stored, err := s.repo.PutRefund(ctx, r)
	if err != nil {
		return model.Refund{}, fmt.Errorf("create refund: %w", err)
	}
	return stored, nil
}

// ListRefunds возвращает все возвраты.
func (s *Service) ListRefunds(ctx context.Context) ([]model.Refund, error) {
	return s.repo.ListRefunds(ctx)
}

// SeedRefunds заполняет реестр демонстрационными данными и возвращает общее число возвратов.
// Повторный вызов не создаёт дубликатов.
func (s *Service) SeedRefunds(ctx context.Context) (int, error) {
	for _, d := range DemoRefunds {
		if _, err := s.UpsertRefundByTxn(ctx, d.TxnID, d.Merchant, d.Amount, d.Stage); err != nil {
			return 0, err
		}
	}
	return s.repo.CountRefunds(ctx)
}

// AdvanceRefund переводит возврат на следующий этап.
// Для завершённого возврата запись возвращается без изменений.
func (s *Service) AdvanceRefund(ctx context.Context, id string) (model.Refund, error) {
	r, err := s.repo.UpdateRefund(ctx, id, func(r *model.Refund) error {
		r.Advance()
		return nil
	})
	if err != nil {
		return model.Refund{}, fmt.Errorf("advance refund %s: %w", id, err)
	}
	return r, nil
}

// EscalateRefund формирует сводку для спора по возврату. Реестр не изменяется.
func (s *Service) EscalateRefund(ctx context.Context, id string) (*model.Escalation, error) {
	r, err := s.repo.GetRefund(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("escalate refund %s: %w", id, err)
	}
	return &model.Escalation{
		Msg:          "escalation created",
		RefundID:     r.ID,
		TxnID:        r.TxnID,
		Merchant:     r.Merchant,
		Amount:       r.Amount,
		CurrentStage: r.Stage,
		DisputeNote:  model.DisputeNote,
	}, nil
}

// AddBill сохраняет счёт и возвращает количество счетов.
func (s *Service) AddBill(ctx context.Context, bill model.Bill) (int, error) {
	return s.repo.AddBill(ctx, bill)
}

// GetBills возвращает все счета.
func (s *Service) GetBills(ctx context.Context) ([]model.Bill, error) {
	return s.repo.ListBills(ctx)
}
