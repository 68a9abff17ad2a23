package paymentadyen

import (
	"context"
	"errors"
	"fmt"

	"github.com/adyen/adyen-go-api-library/v6/src/checkout"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

const MethodName = "adyen"

type Config struct {
	Environment     string
	MerchantAccount string
	ClientKey       string
	APIKey          string
}

var countryOfCurrency = map[string]string{
	"CLP": "CL",
	"EUR": "NL",
	"USD": "US",
}

var shopperLocales = map[string]string{
	"es": "es-ES",
	"en": "en-US",
	"nl": "nl-NL",
}

type widget struct {
	cfg    Config
	payer  Payer
	loader *paymentapi.Loader
	uuider myuuid.UUIDer
	logger mylog.Logger
}

// NewWidget presents Adyen Drop-in. The handle carries the session that
// Drop-in needs; Drop-in posts its result code to SubmitURL.
func NewWidget(cfg Config, payer Payer, uuider myuuid.UUIDer) *widget {
	w := &widget{
		cfg:    cfg,
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
	if w.cfg.APIKey == "" || w.cfg.MerchantAccount == "" || w.cfg.ClientKey == "" {
		return errors.New("missing adyen credentials")
	}
	w.payer.UseAPIKey(w.cfg.APIKey)
	return nil
}

func (w *widget) Load(c context.Context) error {
	return w.loader.Load(c)
}

func (w *widget) Mount(c context.Context, config paymentapi.Config) (paymentapi.Handle, error) {
	err := w.Load(c)
	if err != nil {
		return paymentapi.Handle{}, fmt.Errorf("error loading adyen sdk: %w", err)
	}

	uid := w.uuider.Create()

	resp, err := w.payer.Sessions(c, w.sessionRequest(uid, config))
	if err != nil {
		return paymentapi.Handle{}, fmt.Errorf("error creating adyen session: %s", err)
	}

	w.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Created adyen session %s for order %s", resp.Id, config.Reference)

	return paymentapi.Handle{
		UID:          uid,
		Method:       MethodName,
		PreferenceID: config.PreferenceID,
		Amount:       config.Amount,
		Currency:     config.Currency,
		Locale:       config.Locale,
		PublicKey:    w.cfg.ClientKey,
		SessionID:    resp.Id,
		SessionData:  resp.SessionData,
		SubmitURL:    resultURL(config.BaseURL, uid),
	}, nil
}

func resultURL(baseURL string, uid string) string {
	return fmt.Sprintf("%s/payment/%s/%s/result", baseURL, MethodName, uid)
}

func (w *widget) sessionRequest(uid string, config paymentapi.Config) checkout.CreateCheckoutSessionRequest {
	return checkout.CreateCheckoutSessionRequest{
		Amount: checkout.Amount{
			Currency: config.Currency,
			Value:    config.Amount,
		},
		MerchantAccount: w.cfg.MerchantAccount,
		Reference:       config.Reference,
		ReturnUrl:       resultURL(config.BaseURL, uid),
		CountryCode:     countryOfCurrency[config.Currency],
		ShopperLocale:   shopperLocales[config.Locale],
		ShopperEmail:    config.Buyer.Email,
		ShopperName: &checkout.Name{
			FirstName: config.Buyer.FirstName,
			LastName:  config.Buyer.LastName,
		},
		Channel: "Web",
	}
}

// classifyResultCode maps a Drop-in result code onto a widget status. The
// Drop-in runs in the browser, so a positive code only means the payment is
// waiting for the AUTHORISATION webhook.
func classifyResultCode(resultCode string) paymentapi.Status {
	switch resultCode {
	case "Authorised", "Pending", "Received":
		return paymentapi.StatusPending
	case "Cancelled":
		return paymentapi.StatusCancelled
	default:
		return paymentapi.StatusError
	}
}

// classifyEvent maps a standard webhook event onto a widget status. Only
// events that end a payment report true.
func classifyEvent(eventCode string, success bool) (paymentapi.Status, bool) {
	switch eventCode {
	case "AUTHORISATION":
		if success {
			return paymentapi.StatusSuccess, true
		}
		return paymentapi.StatusError, true
	case "CANCELLATION", "OFFER_CLOSED":
		return paymentapi.StatusCancelled, true
	default:
		return "", false
	}
}
