package paymentstripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

const MethodName = "stripe"

type widget struct {
	apiKey string
	payer  Payer
	loader *paymentapi.Loader
	uuider myuuid.UUIDer
	logger mylog.Logger
}

// NewWidget redirects the buyer to a hosted Stripe Checkout Session. A paid
// session comes back on the return page, a cancelled one on the generic
// payment status page.
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
		return errors.New("missing stripe api key")
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
		return paymentapi.Handle{}, fmt.Errorf("error loading stripe sdk: %w", err)
	}

	uid := w.uuider.Create()

	session, err := w.payer.CreateCheckoutSession(c, sessionParams(uid, config))
	if err != nil {
		return paymentapi.Handle{}, err
	}

	w.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Created stripe session %s for order %s", session.ID, config.Reference)

	return paymentapi.Handle{
		UID:          uid,
		Method:       MethodName,
		PreferenceID: config.PreferenceID,
		Amount:       config.Amount,
		Currency:     config.Currency,
		Locale:       config.Locale,
		SessionID:    session.ID,
		RedirectURL:  session.URL,
	}, nil
}

func returnURL(baseURL string, uid string) string {
	return fmt.Sprintf("%s/payment/%s/%s/return", baseURL, MethodName, uid)
}

func sessionParams(uid string, config paymentapi.Config) stripe.CheckoutSessionParams {
	params := stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Metadata: map[string]string{
				"reference": config.Reference,
			},
		},
		SuccessURL:        stripe.String(returnURL(config.BaseURL, uid)),
		CancelURL:         stripe.String(paymentapi.StatusURL(config.BaseURL, MethodName, uid, paymentapi.StatusCancel)),
		ClientReferenceID: stripe.String(config.PreferenceID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: func() []*stripe.CheckoutSessionLineItemParams {
			lineItems := []*stripe.CheckoutSessionLineItemParams{}
			for _, item := range config.Items {
				lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
					PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
						Currency: stripe.String(strings.ToLower(config.Currency)),
						ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
							Name: stripe.String(item.Name),
						},
						UnitAmount: stripe.Int64(item.Price),
					},
					Quantity: stripe.Int64(int64(item.Quantity)),
				})
			}
			return lineItems
		}(),
	}
	if config.Buyer.Email != "" {
		params.CustomerEmail = stripe.String(config.Buyer.Email)
	}
	if config.Locale != "" {
		params.Locale = stripe.String(config.Locale)
	}

	return params
}

// classifySession maps a Checkout Session onto a widget status. Only a
// final session reports true.
func classifySession(session stripe.CheckoutSession) (paymentapi.Status, bool) {
	switch {
	case session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		session.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return paymentapi.StatusSuccess, true
	case session.Status == stripe.CheckoutSessionStatusExpired:
		return paymentapi.StatusCancelled, true
	default:
		return "", false
	}
}
