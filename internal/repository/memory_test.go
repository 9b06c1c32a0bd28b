package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/refund-tracker/internal/model"
)

func newRefund(id string, stage model.Stage) model.Refund {
	return model.Refund{
		ID:       id,
		TxnID:    "TXN-" + id,
		Merchant: "Merchant",
		Amount:   100,
		Stage:    stage,
		History:  model.DeriveHistory(stage),
	}
}

func TestListEmpty(t *testing.T) {
	repo := NewMemoryRepository()

	refunds, err := repo.ListRefunds(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, refunds)
	assert.Empty(t, refunds)

	bills, err := repo.ListBills(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, bills)
	assert.Empty(t, bills)
}

func TestPutRefund_ReplacesAndKeepsPosition(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.PutRefund(ctx, newRefund("a", model.StageInitiated))
	require.NoError(t, err)
	_, err = repo.PutRefund(ctx, newRefund("b", model.StageInitiated))
	require.NoError(t, err)

	replacement := newRefund("a", model.StagePosted)
	replacement.Merchant = "Other"
	_, err = repo.PutRefund(ctx, replacement)
	require.NoError(t, err)

	refunds, err := repo.ListRefunds(ctx)
	require.NoError(t, err)
	require.Len(t, refunds, 2)
	assert.Equal(t, "a", refunds[0].ID)
	assert.Equal(t, "Other", refunds[0].Merchant)
	assert.Equal(t, model.StagePosted, refunds[0].Stage)
	assert.Equal(t, "b", refunds[1].ID)
}

func TestGetRefund_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.GetRefund(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRefundNotFound)
}

func TestReturnedRefundsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	stored, err := repo.PutRefund(ctx, newRefund("a", model.StageInitiated))
	require.NoError(t, err)
	stored.History[0] = model.StagePosted

	got, err := repo.GetRefund(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []model.Stage{model.StageInitiated}, got.History)
}

func TestUpdateRefund(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.PutRefund(ctx, newRefund("a", model.StageInitiated))
	require.NoError(t, err)

	updated, err := repo.UpdateRefund(ctx, "a", func(r *model.Refund) error {
		r.Advance()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StageGatewayCredited, updated.Stage)

	got, err := repo.GetRefund(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateRefund_ErrorLeavesRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.PutRefund(ctx, newRefund("a", model.StageInitiated))
	require.NoError(t, err)

	errBoom := errors.New("boom")
	_, err = repo.UpdateRefund(ctx, "a", func(r *model.Refund) error {
		r.Advance()
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	got, err := repo.GetRefund(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StageInitiated, got.Stage)
}

func TestUpdateRefund_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.UpdateRefund(context.Background(), "missing", func(r *model.Refund) error {
		t.Fatalf("fn must not be called for a missing refund")
		return nil
	})
	assert.ErrorIs(t, err, ErrRefundNotFound)
}

func TestUpdateRefund_ConcurrentAdvance(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.PutRefund(ctx, newRefund("a", model.StageInitiated))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.UpdateRefund(ctx, "a", func(r *model.Refund) error {
				r.Advance()
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := repo.GetRefund(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StagePosted, got.Stage)
	assert.Equal(t, model.DeriveHistory(model.StagePosted), got.History)
}

func TestBills(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	count, err := repo.AddBill(ctx, model.Bill{ID: "1", Title: "Electricity", Amount: 10, Status: "due"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.AddBill(ctx, model.Bill{ID: "2", Title: "Water", Amount: 5, Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	bills, err := repo.ListBills(ctx)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "Electricity", bills[0].Title)
	assert.Equal(t, "Water", bills[1].Title)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, _ = repo.PutRefund(ctx, newRefund("a", model.StageInitiated))
	_, _ = repo.AddBill(ctx, model.Bill{ID: "1"})

	repo.Reset()

	n, err := repo.CountRefunds(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	bills, err := repo.ListBills(ctx)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryRepository()
	_, err := repo.PutRefund(ctx, newRefund("a", model.StageInitiated))
	assert.ErrorIs(t, err, context.Canceled)
}
