package paymentmercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/services/paymentapi"
	"github.com/MarcGrol/storefront/services/payments"
)

type webService struct {
	logger   mylog.Logger
	payments payments.Service
	registry *paymentapi.Registry
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(paymentService payments.Service, registry *paymentapi.Registry) *webService {
	return &webService{
		logger:   mylog.New(MethodName),
		payments: paymentService,
		registry: registry,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/payment/mercadopago/{handleUID}/process-payment", s.processPayment()).Methods("POST")
}

// processPayment relays the form data of the brick to the payments backend
// and reports the outcome to the checkout that mounted the brick.
func (s *webService) processPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		handleUID := mux.Vars(r)["handleUID"]

		handle, _, found := s.registry.Get(handleUID)
		if !found || handle.Method != MethodName {
			errorWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("mercadopago payment widget %s not found", handleUID)))
			return
		}

		formData, err := io.ReadAll(r.Body)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error reading form data: %s", err)))
			return
		}
		if !json.Valid(formData) {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(fmt.Errorf("form data is not json")))
			return
		}

		result, err := s.payments.ProcessPayment(c, formData)
		if err != nil {
			s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityError, "Error processing payment for widget %s: %s", handleUID, err)
			_ = s.registry.Fail(c, handleUID, err)
			errorWriter.WriteError(c, w, 4, myerrors.NewUnavailableError(err))
			return
		}

		err = s.registry.Settle(c, handleUID, paymentapi.StatusSuccess, result)
		if err != nil {
			errorWriter.WriteError(c, w, 5, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, result)
	}
}
