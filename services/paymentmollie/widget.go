package paymentmollie

import (
	"context"
	"errors"
	"fmt"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

const MethodName = "mollie"

// Currencies without minor unit; their amounts are whole units already.
var zeroDecimalCurrencies = map[string]bool{
	"CLP": true,
	"ISK": true,
	"JPY": true,
	"KRW": true,
}

var locales = map[string]mollie.Locale{
	"es": "es_ES",
	"en": "en_US",
	"nl": "nl_NL",
	"de": "de_DE",
	"fr": "fr_FR",
}

type widget struct {
	apiKey string
	payer  Payer
	loader *paymentapi.Loader
	uuider myuuid.UUIDer
	logger mylog.Logger
}

// NewWidget redirects the buyer to a hosted Mollie payment page.
func NewWidget(apiKey string, payer Payer, uuider myuuid.UUIDer) *widget {
	w := &widget{
		apiKey: apiKey,
		payer:  payer,
		uuider: uuider,
		logger: mylog.New(MethodName),
	}
	w.loader = paymentapi.NewLoader(w.load)
	return w
}

func (w *widget) Method() string {
	return MethodName
}

func (w *widget) load(c context.Context) error {
	if w.apiKey == "" {
		return errors.New("missing mollie api key")
	}
	w.payer.UseAPIKey(w.apiKey)
	return nil
}

func (w *widget) Load(c context.Context) error {
	return w.loader.Load(c)
}

func (w *widget) Mount(c context.Context, config paymentapi.Config) (paymentapi.Handle, error) {
	err := w.Load(c)
	if err != nil {
		return paymentapi.Handle{}, fmt.Errorf("error loading mollie sdk: %w", err)
	}

	uid := w.uuider.Create()

	payment, err := w.payer.CreatePayment(c, paymentRequest(uid, config))
	if err != nil {
		return paymentapi.Handle{}, err
	}
	if payment.Links.Checkout == nil {
		return paymentapi.Handle{}, fmt.Errorf("mollie payment %s has no checkout link", payment.ID)
	}

	w.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Created mollie payment %s for order %s", payment.ID, config.Reference)

	return paymentapi.Handle{
		UID:          uid,
		Method:       MethodName,
		PreferenceID: config.PreferenceID,
		Amount:       config.Amount,
		Currency:     config.Currency,
		Locale:       config.Locale,
		SessionID:    payment.ID,
		RedirectURL:  payment.Links.Checkout.Href,
	}, nil
}

func returnURL(baseURL string, uid string) string {
	return fmt.Sprintf("%s/payment/%s/%s/return", baseURL, MethodName, uid)
}

func paymentRequest(uid string, config paymentapi.Config) mollie.Payment {
	return mollie.Payment{
		Description:  "Order " + config.Reference,
		BillingEmail: config.Buyer.Email,
		RedirectURL:  returnURL(config.BaseURL, uid),
		CancelURL:    paymentapi.StatusURL(config.BaseURL, MethodName, uid, paymentapi.StatusCancelled),
		Metadata: map[string]string{
			"reference":    config.Reference,
			"preferenceId": config.PreferenceID,
		},
		Amount: &mollie.Amount{
			Currency: config.Currency,
			Value:    amountValue(config.Amount, config.Currency),
		},
		Locale: locales[config.Locale],
	}
}

// amountValue formats an amount in minor units the way Mollie expects: a
// string with exactly two decimals.
func amountValue(amount int64, currency string) string {
	if zeroDecimalCurrencies[currency] {
		return fmt.Sprintf("%d.00", amount)
	}
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}

// classifyStatus maps a Mollie payment status onto a widget status. Open
// payments have no outcome yet.
func classifyStatus(mollieStatus string) (paymentapi.Status, bool) {
	switch mollieStatus {
	case "paid", "authorized":
		return paymentapi.StatusSuccess, true
	case "canceled", "expired":
		return paymentapi.StatusCancelled, true
	case "failed":
		return paymentapi.StatusError, true
	default:
		return "", false
	}
}
