package service

import (
	"context"
	"errors"
	"notes-marketplace/internal/client"
	"notes-marketplace/internal/model"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "whole rupees", amount: "499", want: 49900},
		{name: "paise", amount: "149.50", want: 14950},
		{name: "one paisa", amount: "0.01", want: 1},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-10", wantErr: true},
		{name: "sub paisa", amount: "1.005", wantErr: true},
		{name: "largest representable", amount: "92233720368547758.07", want: 9223372036854775807},
		{name: "overflows int64", amount: "184467440737095517.16", wantErr: true},
		{name: "just past int64", amount: "92233720368547758.08", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	rp := &fakeRazorpay{}
	svc := NewOrderService(rp, "INR", false, testLogger)

	order, err := svc.CreateOrder(context.Background(), decimal.NewFromInt(499), "note-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, int64(49900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "note-1", order.Notes[model.NoteListingID])
	assert.Equal(t, "user-1", order.Notes[model.NoteUserID])
	assert.NotEmpty(t, order.ID)

	require.Len(t, rp.createCalls, 1)
	req := rp.createCalls[0]
	assert.Equal(t, 1, req.PaymentCapture)
	assert.True(t, strings.HasPrefix(req.Receipt, "rcpt_"), req.Receipt)
	assert.LessOrEqual(t, len(req.Receipt), 40)
}

func TestOrderService_CreateOrder_FreshReceiptPerCall(t *testing.T) {
	rp := &fakeRazorpay{}
	svc := NewOrderService(rp, "INR", false, testLogger)

	first, err := svc.CreateOrder(context.Background(), decimal.NewFromInt(10), "note-1", "")
	require.NoError(t, err)
	second, err := svc.CreateOrder(context.Background(), decimal.NewFromInt(10), "note-1", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Receipt, second.Receipt)
	_, bound := first.Notes[model.NoteUserID]
	assert.False(t, bound)
}

func TestOrderService_CreateOrder_RejectsInvalidInputWithoutCallingProvider(t *testing.T) {
	rp := &fakeRazorpay{}
	svc := NewOrderService(rp, "INR", false, testLogger)

	_, err := svc.CreateOrder(context.Background(), decimal.Zero, "note-1", "user-1")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreateOrder(context.Background(), decimal.NewFromInt(10), " ", "user-1")
	assert.ErrorIs(t, err, ErrValidationFailed)

	assert.Empty(t, rp.createCalls)
}

func TestOrderService_CreateOrder_ProviderFailure(t *testing.T) {
	providerErr := &client.ProviderError{StatusCode: 401, Code: "BAD_REQUEST_ERROR", Description: "Authentication failed"}
	rp := &fakeRazorpay{
		createOrder: func(*model.RazorpayOrderRequest) (*model.OrderIntent, error) {
			return nil, providerErr
		},
	}
	svc := NewOrderService(rp, "INR", false, testLogger)

	order, err := svc.CreateOrder(context.Background(), decimal.NewFromInt(499), "note-1", "user-1")
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrProviderFailed)

	var pe *client.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 401, pe.StatusCode)
}

func TestOrderService_VerifyConfirmation(t *testing.T) {
	boundOrder := func(orderID string) (*model.OrderIntent, error) {
		return &model.OrderIntent{
			ID:    orderID,
			Notes: model.Notes{model.NoteListingID: "note-1", model.NoteUserID: "user-1"},
		}, nil
	}

	tests := []struct {
		name             string
		requireSignature bool
		rp               *fakeRazorpay
		userID           string
		conf             *model.PaymentConfirmation
		wantErr          error
	}{
		{
			name:    "payment id only",
			rp:      &fakeRazorpay{},
			userID:  "user-1",
			conf:    &model.PaymentConfirmation{PaymentID: "pay_1"},
			wantErr: nil,
		},
		{
			name:    "missing payment id",
			rp:      &fakeRazorpay{},
			userID:  "user-1",
			conf:    &model.PaymentConfirmation{OrderID: "order_1"},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "order bound to the note and user",
			rp:      &fakeRazorpay{fetchOrder: boundOrder},
			userID:  "user-1",
			conf:    &model.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1"},
			wantErr: nil,
		},
		{
			name:    "order bound to another user",
			rp:      &fakeRazorpay{fetchOrder: boundOrder},
			userID:  "user-2",
			conf:    &model.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1"},
			wantErr: ErrConfirmationRejected,
		},
		{
			name: "order for another note",
			rp: &fakeRazorpay{fetchOrder: func(id string) (*model.OrderIntent, error) {
				return &model.OrderIntent{ID: id, Notes: model.Notes{model.NoteListingID: "note-9"}}, nil
			}},
			userID:  "user-1",
			conf:    &model.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1"},
			wantErr: ErrConfirmationRejected,
		},
		{
			name:    "order lookup fails",
			rp:      &fakeRazorpay{},
			userID:  "user-1",
			conf:    &model.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1"},
			wantErr: ErrProviderFailed,
		},
		{
			name:             "signature required but absent",
			requireSignature: true,
			rp:               &fakeRazorpay{fetchOrder: boundOrder},
			userID:           "user-1",
			conf:             &model.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1"},
			wantErr:          ErrConfirmationRejected,
		},
		{
			name:             "signature required and forged",
			requireSignature: true,
			rp: &fakeRazorpay{
				fetchOrder: boundOrder,
				verifyPay: func(string, string, string) error {
					return client.ErrInvalidSignature
				},
			},
			userID:  "user-1",
			conf:    &model.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "forged"},
			wantErr: ErrConfirmationRejected,
		},
		{
			name:             "signature required and valid",
			requireSignature: true,
			rp:               &fakeRazorpay{fetchOrder: boundOrder},
			userID:           "user-1",
			conf:             &model.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "ok"},
			wantErr:          nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewOrderService(tt.rp, "INR", tt.requireSignature, testLogger)
			err := svc.VerifyConfirmation(context.Background(), tt.userID, "note-1", tt.conf)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
