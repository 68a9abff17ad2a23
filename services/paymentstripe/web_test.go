package paymentstripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/storefront/services/paymentapi"
)

func TestReturnPage(t *testing.T) {

	t.Run("Paid session confirms", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		payer := NewMockPayer(ctrl)
		registry := paymentapi.NewRegistry()
		router := setup(payer, registry)

		// given
		var result json.RawMessage
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "cs_123"}, paymentapi.Config{
			OnSuccess: func(c context.Context, r json.RawMessage) { result = r },
		})

		// expect
		payer.EXPECT().GetCheckoutSession(gomock.Any(), "cs_123").Return(stripe.CheckoutSession{
			ID:            "cs_123",
			Status:        stripe.CheckoutSessionStatusComplete,
			PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		}, nil)

		// when
		response := get(router, "/payment/stripe/handle_1/return")

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "/order-summary", response.Header().Get("Location"))
		assert.JSONEq(t, `{"id":"cs_123","paymentStatus":"paid"}`, string(result))
		_, _, found := registry.Get("handle_1")
		assert.False(t, found)
	})

	t.Run("Unpaid session is not settled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		payer := NewMockPayer(ctrl)
		registry := paymentapi.NewRegistry()
		router := setup(payer, registry)

		// given
		succeeded := false
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "cs_123"}, paymentapi.Config{
			OnSuccess: func(c context.Context, r json.RawMessage) { succeeded = true },
		})

		// expect
		payer.EXPECT().GetCheckoutSession(gomock.Any(), "cs_123").Return(stripe.CheckoutSession{
			ID:            "cs_123",
			Status:        stripe.CheckoutSessionStatusOpen,
			PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
		}, nil)

		// when
		response := get(router, "/payment/stripe/handle_1/return")

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, "/checkout", response.Header().Get("Location"))
		assert.False(t, succeeded)
		_, _, found := registry.Get("handle_1")
		assert.True(t, found)
	})

	t.Run("Expired session cancels", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		payer := NewMockPayer(ctrl)
		registry := paymentapi.NewRegistry()
		router := setup(payer, registry)

		// given
		cancelled := false
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "cs_123"}, paymentapi.Config{
			OnCancel: func(c context.Context) { cancelled = true },
		})

		// expect
		payer.EXPECT().GetCheckoutSession(gomock.Any(), "cs_123").Return(stripe.CheckoutSession{
			ID:            "cs_123",
			Status:        stripe.CheckoutSessionStatusExpired,
			PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
		}, nil)

		// when
		response := get(router, "/payment/stripe/handle_1/return")

		// then
		assert.Equal(t, "/checkout", response.Header().Get("Location"))
		assert.True(t, cancelled)
	})

	t.Run("Stripe unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		payer := NewMockPayer(ctrl)
		registry := paymentapi.NewRegistry()
		router := setup(payer, registry)

		// given
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "cs_123"}, paymentapi.Config{})

		// expect
		payer.EXPECT().GetCheckoutSession(gomock.Any(), "cs_123").Return(stripe.CheckoutSession{}, errors.New("timeout"))

		// when
		response := get(router, "/payment/stripe/handle_1/return")

		// then
		assert.Equal(t, 503, response.Code)
		_, _, found := registry.Get("handle_1")
		assert.True(t, found)
	})

	t.Run("Widget of other method", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		registry := paymentapi.NewRegistry()
		router := setup(NewMockPayer(ctrl), registry)

		// given
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: "mollie"}, paymentapi.Config{})

		// when
		response := get(router, "/payment/stripe/handle_1/return")

		// then
		assert.Equal(t, 404, response.Code)
	})
}

func setup(payer Payer, registry *paymentapi.Registry) *mux.Router {
	router := mux.NewRouter()
	NewWebService(payer, registry).RegisterEndpoints(context.TODO(), router)
	return router
}

func get(router *mux.Router, path string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}
