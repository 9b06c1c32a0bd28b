// Package repository содержит хранилища данных сервиса возвратов в памяти процесса.
package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/mmeshcher/refund-tracker/internal/model"
)

// ErrRefundNotFound возвращается, если возврат с указанным идентификатором не найден.
var ErrRefundNotFound = errors.New("refund not found")

// MemoryRepository хранит возвраты и счета в памяти. Все операции сериализуются мьютексом.
type MemoryRepository struct {
	mu sync.RWMutex

	refunds map[string]*model.Refund
	// order хранит идентификаторы в порядке первого добавления.
	order []string

	bills []model.Bill
}

// NewMemoryRepository создаёт пустое хранилище.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		refunds: make(map[string]*model.Refund),
	}
}

// Close ничего не освобождает и нужен для совместимости с контрактом сервиса.
func (r *MemoryRepository) Close() error {
	return nil
}

// Reset удаляет все возвраты и счета.
func (r *MemoryRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refunds = make(map[string]*model.Refund)
	r.order = nil
	r.bills = nil
}

// PutRefund сохраняет возврат целиком, заменяя прежнюю запись с тем же идентификатором.
func (r *MemoryRepository) PutRefund(ctx context.Context, refund model.Refund) (model.Refund, error) {
	if err := ctx.Err(); err != nil {
		return model.Refund{}, err
	}

	stored := refund.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.refunds[stored.ID]; !ok {
		r.order = append(r.order, stored.ID)
	}
	r.refunds[stored.ID] = &stored

	return stored.Clone(), nil
}

// GetRefund возвращает копию возврата по идентификатору.
func (r *MemoryRepository) GetRefund(ctx context.Context, id string) (model.Refund, error) {
	if err := ctx.Err(); err != nil {
		return model.Refund{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.refunds[id]
	if !ok {
		return model.Refund{}, ErrRefundNotFound
	}
	return stored.Clone(), nil
}

// ListRefunds возвращает все возвраты в порядке их первого добавления.
func (r *MemoryRepository) ListRefunds(ctx context.Context) ([]model.Refund, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]model.Refund, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, r.refunds[id].Clone())
	}
	return res, nil
}

// CountRefunds возвращает количество хранимых возвратов.
func (r *MemoryRepository) CountRefunds(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.refunds), nil
}

// UpdateRefund атомарно применяет fn к хранимому возврату.
// Если fn возвращает ошибку, запись остаётся прежней.
func (r *MemoryRepository) UpdateRefund(ctx context.Context, id string, fn func(*model.Refund) error) (model.Refund, error) {
	if err := ctx.Err(); err != nil {
		return model.Refund{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.refunds[id]
	if !ok {
		return model.Refund{}, ErrRefundNotFound
	}

	working := stored.Clone()
	if err := fn(&working); err != nil {
		return model.Refund{}, err
	}
	// Идентификатор записи менять нельзя.
	working.ID = id
	r.refunds[id] = &working

	return working.Clone(), nil
}

// AddBill добавляет счёт в конец списка и возвращает новое количество счетов.
func (r *MemoryRepository) AddBill(ctx context.Context, bill model.Bill) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bills = append(r.bills, bill)
	return len(r.bills), nil
}

// ListBills возвращает все счета в порядке добавления.
func (r *MemoryRepository) ListBills(ctx context.Context) ([]model.Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]model.Bill, len(r.bills))
	copy(res, r.bills)
	return res, nil
}
