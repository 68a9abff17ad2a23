package paymentadyen

import (
	"github.com/MarcGrol/storefront/services/paymentapi"
)

type ResultRequest struct {
	ResultCode    string `form:"resultCode"`
	SessionResult string `form:"sessionResult"`
}

type ResultResponse struct {
	Status      paymentapi.Status `json:"status"`
	RedirectURL string            `json:"redirectUrl"`
}

type WebhookNotification struct {
	Live              string             `json:"live"`
	NotificationItems []NotificationItem `json:"notificationItems"`
}

type WebhookNotificationResponse struct {
	Status string `json:"status"`
}

type NotificationItem struct {
	NotificationRequestItem NotificationRequestItem `json:"NotificationRequestItem"`
}

type NotificationRequestItem struct {
	AdditionalData      AdditionalData `json:"additionalData"`
	Amount              Amount         `json:"amount"`
	EventCode           string         `json:"eventCode"`
	MerchantAccountCode string         `json:"merchantAccountCode"`
	MerchantReference   string         `json:"merchantReference"`
	PaymentMethod       string         `json:"paymentMethod"`
	PspReference        string         `json:"pspReference"`
	Reason              string         `json:"reason"`
	Success             string         `json:"success"`
}

type AdditionalData struct {
	CheckoutSessionID string `json:"checkoutSessionId"`
}

type Amount struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}
