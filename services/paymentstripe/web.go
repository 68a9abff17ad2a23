package paymentstripe

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
	router.HandleFunc("/payment/stripe/{handleUID}/return", s.returnPage()).Methods("GET")
}

// returnPage is where Stripe sends the buyer back to after paying. The
// payment status is read from the Checkout Session.
func (s *webService) returnPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		handleUID := mux.Vars(r)["handleUID"]

		handle, _, found := s.registry.Get(handleUID)
		if !found || handle.Method != MethodName {
			errorWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("stripe payment widget %s not found", handleUID)))
			return
		}

		session, err := s.payer.GetCheckoutSession(c, handle.SessionID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewUnavailableError(err))
			return
		}

		status, final := classifySession(session)
		if !final {
			s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Stripe session %s still %s/%s", session.ID, session.Status, session.PaymentStatus)
			http.Redirect(w, r, paymentapi.CheckoutPath, http.StatusSeeOther)
			return
		}

		result, err := json.Marshal(map[string]string{
			"id":            session.ID,
			"paymentStatus": string(session.PaymentStatus),
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
