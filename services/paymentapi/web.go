package paymentapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
)

const (
	ConfirmationPath = "/order-summary"
	CheckoutPath     = "/checkout"
)

// StatusURL is where a hosted payment page sends the buyer back to after a
// cancel or failure. Success is only confirmed by a route of the provider
// that checks the payment with the provider itself.
func StatusURL(baseURL string, method string, handleUID string, status Status) string {
	return fmt.Sprintf("%s/payment/%s/%s/status/%s", baseURL, method, handleUID, status)
}

type webService struct {
	logger   mylog.Logger
	registry *Registry
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(registry *Registry) *webService {
	return &webService{
		logger:   mylog.New("paymentapi"),
		registry: registry,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/payment/{method}/{handleUID}/status/{status}", s.statusPage()).Methods("GET")
}

func (s *webService) statusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		method := mux.Vars(r)["method"]
		handleUID := mux.Vars(r)["handleUID"]
		status := Status(mux.Vars(r)["status"])

		if status == StatusSuccess {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("success of %s payment %s is not accepted from the status url", method, handleUID)))
			return
		}

		handle, _, found := s.registry.Get(handleUID)
		if !found || handle.Method != method {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("%s payment widget %s not found", method, handleUID)))
			return
		}

		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Payment %s via %s returned with status %s", handleUID, method, status)

		err := s.registry.Settle(c, handleUID, status, nil)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		http.Redirect(w, r, RedirectPath(status), http.StatusSeeOther)
	}
}

// RedirectPath is the page to show the buyer after a payment returned with status.
func RedirectPath(status Status) string {
	if status == StatusSuccess {
		return ConfirmationPath
	}
	return CheckoutPath
}
