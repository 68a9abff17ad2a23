package paymentmollie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

type webService struct {
	logger   mylog.Logger
	payer    Payer
	registry *paymentapi.Registry
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(payer Payer, registry *paymentapi.Registry) *webService {
	return &webService{
		logger:   mylog.New(MethodName),
		payer:    payer,
		registry: registry,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/payment/mollie/{handleUID}/return", s.returnPage()).Methods("GET")
}

// returnPage is where Mollie sends the buyer back to. The outcome is read
// from Mollie itself, not from the url.
func (s *webService) returnPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		handleUID := mux.Vars(r)["handleUID"]

		handle, _, found := s.registry.Get(handleUID)
		if !found || handle.Method != MethodName {
			errorWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("mollie payment widget %s not found", handleUID)))
			return
		}

		payment, err := s.payer.GetPaymentOnID(c, handle.SessionID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewUnavailableError(err))
			return
		}

		status, final := classifyStatus(payment.Status)
		if !final {
			s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Mollie payment %s still %s", payment.ID, payment.Status)
			http.Redirect(w, r, paymentapi.CheckoutPath, http.StatusSeeOther)
			return
		}

		result, err := json.Marshal(map[string]string{
			"id":     payment.ID,
			"status": payment.Status,
		})
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInternalError(err))
			return
		}

		err = s.registry.Settle(c, handleUID, status, result)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		http.Redirect(w, r, paymentapi.RedirectPath(status), http.StatusSeeOther)
	}
}
