package dto

import "github.com/shopspring/decimal"

type CreateOrderRequest struct {
	Amount decimal.Decimal `json:"amount"`
	NoteID string          `json:"noteId"`
}

type RecordPurchaseRequest struct {
	UserID    string `json:"userId"`
	NoteID    string `json:"noteId"`
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId,omitempty"`
	Signature string `json:"signature,omitempty"`
}

type RecordPurchaseResponse struct {
	Success bool `json:"success"`
}

type CheckoutRequest struct {
	NoteID string `json:"noteId"`
}

type CheckoutResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
	NoteID   string `json:"noteId"`
	Title    string `json:"title"`
}

type ConfirmCheckoutRequest struct {
	NoteID    string `json:"noteId"`
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type AbortCheckoutRequest struct {
	NoteID  string `json:"noteId"`
	OrderID string `json:"orderId"`
	Reason  string `json:"reason,omitempty"`
}

type CheckoutStateResponse struct {
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

type LibraryItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Purchased bool            `json:"purchased"`
}

type AdminListing struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	FilePath  string          `json:"file_path"`
	URL       string          `json:"url,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
