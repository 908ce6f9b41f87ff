package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/service/cart"
)

type call struct {
	op    string
	id    string
	value int
}

type mockCart struct {
	calls []call
	err   error
}

func (m *mockCart) AddToCart(_ context.Context, id string, qty int) (models.Product, error) {
	m.calls = append(m.calls, call{op: "add", id: id, value: qty})
	return models.Product{ID: id, Title: "Lamp"}, m.err
}

func (m *mockCart) ChangeQuantity(_ context.Context, id string, delta int) error {
	m.calls = append(m.calls, call{op: "change", id: id, value: delta})
	return m.err
}

func (m *mockCart) RemoveFromCart(_ context.Context, id string) error {
	m.calls = append(m.calls, call{op: "remove", id: id})
	return m.err
}

func (m *mockCart) Clear(context.Context) error {
	m.calls = append(m.calls, call{op: "clear"})
	return m.err
}

func TestHandleIntent_Routing(t *testing.T) {
	tests := []struct {
		name   string
		intent models.Intent
		want   call
	}{
		{"add defaults to one", models.Intent{Type: models.IntentAdd, ProductID: "p1"}, call{"add", "p1", 1}},
		{"add with qty", models.Intent{Type: models.IntentAdd, ProductID: "p1", Quantity: 3}, call{"add", "p1", 3}},
		{"increase", models.Intent{Type: models.IntentIncrease, ProductID: "p1"}, call{"change", "p1", 1}},
		{"decrease", models.Intent{Type: models.IntentDecrease, ProductID: "p1"}, call{"change", "p1", -1}},
		{"decrease by two", models.Intent{Type: models.IntentDecrease, ProductID: "p1", Quantity: 2}, call{"change", "p1", -2}},
		{"remove", models.Intent{Type: models.IntentRemove, ProductID: "p1"}, call{"remove", "p1", 0}},
		{"clear", models.Intent{Type: models.IntentClear}, call{"clear", "", 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := &mockCart{}
			svc := NewService(mc, nil)

			_, err := svc.HandleIntent(context.Background(), tt.intent)
			require.NoError(t, err)
			require.Len(t, mc.calls, 1)
			assert.Equal(t, tt.want, mc.calls[0])
		})
	}
}

func TestHandleIntent_AddNotice(t *testing.T) {
	svc := NewService(&mockCart{}, nil)

	notice, err := svc.HandleIntent(context.Background(), models.Intent{Type: models.IntentAdd, ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, models.NoticeSuccess, notice.Level)
	assert.Equal(t, "Lamp added to cart.", notice.Message)
}

func TestHandleIntent_QuietOnSuccess(t *testing.T) {
	svc := NewService(&mockCart{}, nil)

	notice, err := svc.HandleIntent(context.Background(), models.Intent{Type: models.IntentRemove, ProductID: "p1"})
	require.NoError(t, err)
	assert.Empty(t, notice.Title)
}

func TestHandleIntent_Unknown(t *testing.T) {
	mc := &mockCart{}
	svc := NewService(mc, nil)

	notice, err := svc.HandleIntent(context.Background(), models.ParseIntent("/checkout now"))
	require.ErrorIs(t, err, ErrUnsupportedIntent)
	assert.Equal(t, "Unknown action", notice.Title)
	assert.Empty(t, mc.calls)
}

func TestHandleIntent_ErrorsBecomeNotices(t *testing.T) {
	tests := []struct {
		err   error
		level models.NoticeLevel
		msg   string
	}{
		{fmt.Errorf("%w: p9", cart.ErrProductNotFound), models.NoticeError, "Product not found."},
		{fmt.Errorf("%w: p1", cart.ErrInsufficientStock), models.NoticeWarning, "Not enough stock available."},
		{cart.ErrInvalidQuantity, models.NoticeError, "Quantity must be at least 1."},
		{fmt.Errorf("%w: disk full", cart.ErrNotPersisted), models.NoticeWarning, "Cart updated for this session only; it could not be saved."},
		{errors.New("boom"), models.NoticeError, "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := NewService(&mockCart{err: tt.err}, nil)

			notice, err := svc.HandleIntent(context.Background(), models.Intent{Type: models.IntentIncrease, ProductID: "p1"})
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.level, notice.Level)
			assert.Equal(t, tt.msg, notice.Message)
		})
	}
}
