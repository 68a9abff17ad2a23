package paymentapi

import (
	"context"
	"encoding/json"
)

type Buyer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type Item struct {
	ID       string
	Name     string
	Price    int64
	Quantity int
}

// Config is what a widget needs to present a hosted payment form. The
// callbacks report the outcome of the payment, possibly long after Mount
// returned and outside the request of the visitor identified by SessionUID.
type Config struct {
	PreferenceID string
	Reference    string
	Buyer        Buyer
	Amount       int64
	Currency     string
	Locale       string
	SessionUID   string
	Items        []Item
	BaseURL      string

	OnSuccess func(c context.Context, result json.RawMessage)
	OnError   func(c context.Context, err error)
	OnCancel  func(c context.Context)
}

// Handle describes a mounted widget to the client that renders it.
type Handle struct {
	UID          string `json:"uid"`
	Method       string `json:"method"`
	PreferenceID string `json:"preferenceId"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Locale       string `json:"locale,omitempty"`
	PublicKey    string `json:"publicKey,omitempty"`
	RedirectURL  string `json:"redirectUrl,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	SessionData  string `json:"sessionData,omitempty"`
	SubmitURL    string `json:"submitUrl,omitempty"`
}

// Widget is a third-party hosted payment form.
//
//go:generate mockgen -source=model.go -package paymentapi -destination widget_mock.go Widget
type Widget interface {
	Method() string
	// Load initializes the provider SDK. Mount loads it when needed.
	Load(c context.Context) error
	Mount(c context.Context, config Config) (Handle, error)
}

type Status string

const (
	StatusSuccess   Status = "success"
	StatusCancel    Status = "cancel"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
	StatusPending   Status = "pending"
)

func (s Status) isCancel() bool {
	return s == StatusCancel || s == StatusCancelled
}
