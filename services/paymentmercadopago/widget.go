package paymentmercadopago

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

const MethodName = "mercadopago"

type widget struct {
	publicKey string
	loader    *paymentapi.Loader
	uuider    myuuid.UUIDer
	logger    mylog.Logger
}

// NewWidget presents the MercadoPago payment brick. The brick posts its form
// data back to SubmitURL of the handle.
func NewWidget(publicKey string, uuider myuuid.UUIDer) *widget {
	w := &widget{
		publicKey: publicKey,
		uuider:    uuider,
		logger:    mylog.New(MethodName),
	}
	w.loader = paymentapi.NewLoader(w.load)
	return w
}

func (w *widget) Method() string {
	return MethodName
}

func (w *widget) load(c context.Context) error {
	if w.publicKey == "" {
		return errors.New("missing mercadopago public key")
	}
	w.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "MercadoPago SDK initialized")
	return nil
}

func (w *widget) Load(c context.Context) error {
	return w.loader.Load(c)
}

func (w *widget) Mount(c context.Context, config paymentapi.Config) (paymentapi.Handle, error) {
	err := w.Load(c)
	if err != nil {
		return paymentapi.Handle{}, fmt.Errorf("error loading mercadopago sdk: %w", err)
	}

	uid := w.uuider.Create()

	return paymentapi.Handle{
		UID:          uid,
		Method:       MethodName,
		PreferenceID: config.PreferenceID,
		Amount:       config.Amount,
		Currency:     config.Currency,
		Locale:       config.Locale,
		PublicKey:    w.publicKey,
		SubmitURL:    fmt.Sprintf("%s/payment/%s/%s/process-payment", config.BaseURL, MethodName, uid),
	}, nil
}
