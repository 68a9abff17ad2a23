package paymentadyen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adyen/adyen-go-api-library/v6/src/checkout"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

var cfg = Config{
	Environment:     "test",
	MerchantAccount: "MyMerchantAccount",
	ClientKey:       "test_client_key",
	APIKey:          "my_api_key",
}

func TestWidget(t *testing.T) {

	t.Run("Mount creates session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		payer := NewMockPayer(ctrl)
		uuider := myuuid.NewMockUUIDer(ctrl)
		sut := NewWidget(cfg, payer, uuider)

		// expect
		uuider.EXPECT().Create().Return("handle_1")
		payer.EXPECT().UseAPIKey("my_api_key")
		payer.EXPECT().Sessions(gomock.Any(), checkout.CreateCheckoutSessionRequest{
			Amount:          checkout.Amount{Currency: "CLP", Value: 250},
			MerchantAccount: "MyMerchantAccount",
			Reference:       "order_1",
			ReturnUrl:       "http://localhost:8080/payment/adyen/handle_1/result",
			CountryCode:     "CL",
			ShopperLocale:   "es-ES",
			ShopperEmail:    "ana@example.com",
			ShopperName:     &checkout.Name{FirstName: "Ana", LastName: "Diaz"},
			Channel:         "Web",
		}).Return(checkout.CreateCheckoutSessionResponse{Id: "CS123", SessionData: "Ab02b4c0"}, nil)

		// when
		handle, err := sut.Mount(context.TODO(), paymentapi.Config{
			PreferenceID: "pref_1",
			Reference:    "order_1",
			Buyer:        paymentapi.Buyer{FirstName: "Ana", LastName: "Diaz", Email: "ana@example.com"},
			Amount:       250,
			Currency:     "CLP",
			Locale:       "es",
			BaseURL:      "http://localhost:8080",
		})

		// then
		assert.NoError(t, err)
		assert.Equal(t, paymentapi.Handle{
			UID:          "handle_1",
			Method:       "adyen",
			PreferenceID: "pref_1",
			Amount:       250,
			Currency:     "CLP",
			Locale:       "es",
			PublicKey:    "test_client_key",
			SessionID:    "CS123",
			SessionData:  "Ab02b4c0",
			SubmitURL:    "http://localhost:8080/payment/adyen/handle_1/result",
		}, handle)
	})

	t.Run("Failed load is retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		sut := NewWidget(Config{}, NewMockPayer(ctrl), myuuid.NewMockUUIDer(ctrl))

		// when
		_, err1 := sut.Mount(context.TODO(), paymentapi.Config{})
		_, err2 := sut.Mount(context.TODO(), paymentapi.Config{})

		// then
		assert.Error(t, err1)
		assert.Error(t, err2)
	})

	t.Run("Session creation fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		payer := NewMockPayer(ctrl)
		uuider := myuuid.NewMockUUIDer(ctrl)
		sut := NewWidget(cfg, payer, uuider)

		// expect
		uuider.EXPECT().Create().Return("handle_1")
		payer.EXPECT().UseAPIKey(gomock.Any())
		payer.EXPECT().Sessions(gomock.Any(), gomock.Any()).Return(checkout.CreateCheckoutSessionResponse{}, errors.New("403 forbidden"))

		// when
		_, err := sut.Mount(context.TODO(), paymentapi.Config{Currency: "CLP"})

		// then
		assert.Error(t, err)
	})
}

func TestResultPage(t *testing.T) {

	t.Run("Authorised waits for webhook", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := setup(registry, &recordingLocker{})

		// given
		succeeded := false
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "CS123"}, paymentapi.Config{
			OnSuccess: func(c context.Context, r json.RawMessage) { succeeded = true },
		})

		// when
		response := post(router, "/payment/adyen/handle_1/result", "resultCode=Authorised")

		// then
		assert.Equal(t, 200, response.Code)
		resp := ResultResponse{}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &resp))
		assert.Equal(t, ResultResponse{Status: paymentapi.StatusPending, RedirectURL: "/checkout"}, resp)
		assert.False(t, succeeded)
		_, _, found := registry.Get("handle_1")
		assert.True(t, found)
	})

	t.Run("Refused keeps widget", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := setup(registry, &recordingLocker{})

		// given
		var reported error
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName}, paymentapi.Config{
			OnError: func(c context.Context, err error) { reported = err },
		})

		// when
		response := post(router, "/payment/adyen/handle_1/result", "resultCode=Refused")

		// then
		assert.Equal(t, 200, response.Code)
		assert.Error(t, reported)
		_, _, found := registry.Get("handle_1")
		assert.True(t, found)
	})

	t.Run("Cancelled", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := setup(registry, &recordingLocker{})

		// given
		cancelled := false
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName}, paymentapi.Config{
			OnCancel: func(c context.Context) { cancelled = true },
		})

		// when
		response := post(router, "/payment/adyen/handle_1/result", "resultCode=Cancelled")

		// then
		assert.Equal(t, 200, response.Code)
		assert.True(t, cancelled)
	})

	t.Run("Missing result code", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := setup(registry, &recordingLocker{})

		// given
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName}, paymentapi.Config{})

		// when
		response := post(router, "/payment/adyen/handle_1/result", "")

		// then
		assert.Equal(t, 400, response.Code)
	})

	t.Run("Widget of other method", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := setup(registry, &recordingLocker{})

		// given
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: "stripe"}, paymentapi.Config{})

		// when
		response := post(router, "/payment/adyen/handle_1/result", "resultCode=Authorised")

		// then
		assert.Equal(t, 404, response.Code)
	})
}

var credentials = WebhookCredentials{Username: "adyen", Password: "secret"}

func setup(registry *paymentapi.Registry, locker SessionLocker) *mux.Router {
	router := mux.NewRouter()
	NewWebService(registry, locker, credentials).RegisterEndpoints(context.TODO(), router)
	return router
}

type recordingLocker struct {
	locked   []string
	unlocked int
}

func (l *recordingLocker) Lock(sessionUID string) func() {
	l.locked = append(l.locked, sessionUID)
	return func() { l.unlocked++ }
}

func notify(router *mux.Router, username, password string, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, "/payment/adyen/webhook/event", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	request.SetBasicAuth(username, password)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func notification(eventCode string, success string) string {
	return `{"live":"false","notificationItems":[{"NotificationRequestItem":{` +
		`"additionalData":{"checkoutSessionId":"CS123"},` +
		`"eventCode":"` + eventCode + `","success":"` + success + `",` +
		`"merchantReference":"order_1","pspReference":"PSP1"}}]}`
}

func post(router *mux.Router, path string, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func TestWebhookNotification(t *testing.T) {

	t.Run("Authorisation confirms under the session lock", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		locker := &recordingLocker{}
		router := setup(registry, locker)

		// given
		var result json.RawMessage
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "CS123"}, paymentapi.Config{
			SessionUID: "session_1",
			OnSuccess:  func(c context.Context, r json.RawMessage) { result = r },
		})

		// when
		response := notify(router, "adyen", "secret", notification("AUTHORISATION", "true"))

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "[accepted]")
		assert.JSONEq(t, `{"sessionId":"CS123","pspReference":"PSP1","eventCode":"AUTHORISATION","success":"true"}`, string(result))
		assert.Equal(t, []string{"session_1"}, locker.locked)
		assert.Equal(t, 1, locker.unlocked)
		_, _, found := registry.Get("handle_1")
		assert.False(t, found)
	})

	t.Run("Refused authorisation keeps widget", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := setup(registry, &recordingLocker{})

		// given
		var reported error
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "CS123"}, paymentapi.Config{
			OnError: func(c context.Context, err error) { reported = err },
		})

		// when
		response := notify(router, "adyen", "secret", notification("AUTHORISATION", "false"))

		// then
		assert.Equal(t, 200, response.Code)
		assert.Error(t, reported)
		_, _, found := registry.Get("handle_1")
		assert.True(t, found)
	})

	t.Run("Other events are ignored", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		locker := &recordingLocker{}
		router := setup(registry, locker)

		// given
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "CS123"}, paymentapi.Config{})

		// when
		response := notify(router, "adyen", "secret", notification("REPORT_AVAILABLE", "true"))

		// then
		assert.Equal(t, 200, response.Code)
		assert.Empty(t, locker.locked)
		_, _, found := registry.Get("handle_1")
		assert.True(t, found)
	})

	t.Run("Unknown session is accepted", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := setup(registry, &recordingLocker{})

		// when
		response := notify(router, "adyen", "secret", notification("AUTHORISATION", "true"))

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "[accepted]")
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := setup(registry, &recordingLocker{})

		// given
		succeeded := false
		registry.Add(paymentapi.Handle{UID: "handle_1", Method: MethodName, SessionID: "CS123"}, paymentapi.Config{
			OnSuccess: func(c context.Context, r json.RawMessage) { succeeded = true },
		})

		// when
		response := notify(router, "adyen", "guess", notification("AUTHORISATION", "true"))

		// then
		assert.Equal(t, 403, response.Code)
		assert.False(t, succeeded)
	})

	t.Run("Webhook refused without configured credentials", func(t *testing.T) {
		// setup
		registry := paymentapi.NewRegistry()
		router := mux.NewRouter()
		NewWebService(registry, &recordingLocker{}, WebhookCredentials{}).RegisterEndpoints(context.TODO(), router)

		// when
		response := notify(router, "", "", notification("AUTHORISATION", "true"))

		// then
		assert.Equal(t, 403, response.Code)
	})
}
