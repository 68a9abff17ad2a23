package checkout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

const (
	MethodCash = "cash"

	orderFailedMessage      = "Your order could not be placed. Please try again."
	paymentStartFailMessage = "The payment could not be started. Please try again."
	paymentFailedMessage    = "The payment failed. Please try again."
	noOrderFoundMessage     = "No order found. Please try again."
)

type ViewName string

const (
	ViewEmpty        ViewName = "empty"
	ViewForm         ViewName = "form"
	ViewWidget       ViewName = "widget"
	ViewConfirmation ViewName = "confirmation"
)

type OrderItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Order is the snapshot of buyer, items and total taken at submission.
type Order struct {
	UID           string          `json:"uid"`
	CreatedAt     time.Time       `json:"createdAt"`
	User          Form            `json:"user"`
	Items         []OrderItem     `json:"items"`
	Total         int64           `json:"total"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method,omitempty"`
	PaymentResult json.RawMessage `json:"paymentResult,omitempty"`
}

// State is the checkout of one session, persisted between requests.
type State struct {
	FormState
	Method       string             `json:"method"`
	PreferenceID string             `json:"preferenceId,omitempty"`
	View         ViewName           `json:"view"`
	PendingOrder *Order             `json:"pendingOrder,omitempty"`
	Widget       *paymentapi.Handle `json:"widget,omitempty"`
	Order        *Order             `json:"order,omitempty"`
}

func newState() State {
	return State{
		Method: MethodCash,
		View:   ViewForm,
	}
}

// discardWidget returns to the form; the preference is dropped with the widget.
func (s *State) discardWidget() {
	s.View = ViewForm
	s.PreferenceID = ""
	s.Widget = nil
	s.PendingOrder = nil
}

type View struct {
	View         ViewName           `json:"view"`
	Methods      []string           `json:"methods"`
	Method       string             `json:"method"`
	Form         Form               `json:"form"`
	Error        string             `json:"error,omitempty"`
	Items        []cart.LineItem    `json:"items"`
	Total        int64              `json:"total"`
	TotalText    string             `json:"totalText"`
	PreferenceID string             `json:"preferenceId,omitempty"`
	Widget       *paymentapi.Handle `json:"widget,omitempty"`
	Order        *Order             `json:"order,omitempty"`
}

type Summary struct {
	Order     Order    `json:"order"`
	Lines     []string `json:"lines"`
	TotalText string   `json:"totalText"`
}

func newSummary(order Order) Summary {
	lines := []string{}
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("%s x %d %s", item.Name, item.Quantity, formatAmount(item.Price*int64(item.Quantity))))
	}
	return Summary{
		Order:     order,
		Lines:     lines,
		TotalText: totalText(order.Total),
	}
}

type MethodRequest struct {
	Method string `form:"method"`
}

func totalText(total int64) string {
	return "Total: " + formatAmount(total)
}

// formatAmount renders an amount with thousands separators, e.g. $2,500.
func formatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	grouped := []byte{}
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, digits[i])
	}

	return sign + "$" + string(grouped)
}
