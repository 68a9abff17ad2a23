package paymentadyen

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

// WebhookCredentials is the basic-auth pair Adyen sends with every webhook.
type WebhookCredentials struct {
	Username string
	Password string
}

// SessionLocker serializes the work done for one visitor.
type SessionLocker interface {
	Lock(sessionUID string) func()
}

type webService struct {
	logger      mylog.Logger
	registry    *paymentapi.Registry
	locker      SessionLocker
	credentials WebhookCredentials
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(registry *paymentapi.Registry, locker SessionLocker, credentials WebhookCredentials) *webService {
	return &webService{
		logger:      mylog.New(MethodName),
		registry:    registry,
		locker:      locker,
		credentials: credentials,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/payment/adyen/{handleUID}/result", s.resultPage()).Methods("POST", "GET")
	router.HandleFunc("/payment/adyen/webhook/event", s.webhookNotification()).Methods("POST")
}

// resultPage receives the outcome the Drop-in reported in the browser.
// Refusals and cancels end the attempt; a positive outcome waits for the webhook.
func (s *webService) resultPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		handleUID := mux.Vars(r)["handleUID"]

		handle, _, found := s.registry.Get(handleUID)
		if !found || handle.Method != MethodName {
			errorWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("adyen payment widget %s not found", handleUID)))
			return
		}

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}

		req := ResultRequest{}
		err = formcodec.NewDecoder().Decode(&req, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}
		if req.ResultCode == "" {
			errorWriter.WriteError(c, w, 4, myerrors.NewInvalidInputError(fmt.Errorf("missing resultCode")))
			return
		}

		status := classifyResultCode(req.ResultCode)

		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Adyen session %s ended with %s", handle.SessionID, req.ResultCode)

		if status == paymentapi.StatusPending {
			errorWriter.Write(c, w, http.StatusOK, ResultResponse{
				Status:      status,
				RedirectURL: paymentapi.CheckoutPath,
			})
			return
		}

		result, err := json.Marshal(map[string]string{
			"sessionId":  handle.SessionID,
			"resultCode": req.ResultCode,
		})
		if err != nil {
			errorWriter.WriteError(c, w, 5, myerrors.NewInternalError(err))
			return
		}

		err = s.registry.Settle(c, handleUID, status, result)
		if err != nil {
			errorWriter.WriteError(c, w, 6, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, ResultResponse{
			Status:      status,
			RedirectURL: paymentapi.RedirectPath(status),
		})
	}
}

// webhookNotification receives the definitive payment status from Adyen.
func (s *webService) webhookNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		username, password, _ := r.BasicAuth()
		if !s.authentic(username, password) {
			errorWriter.WriteError(c, w, 1, myerrors.NewAuthenticationError(fmt.Errorf("webhook notification with invalid credentials")))
			return
		}

		event := WebhookNotification{}
		err := json.NewDecoder(r.Body).Decode(&event)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error parsing webhook notification event: %s", err)))
			return
		}

		for _, item := range event.NotificationItems {
			s.processNotificationItem(c, item.NotificationRequestItem)
		}

		// "[accepted]" tells Adyen the notification is processed
		errorWriter.Write(c, w, http.StatusOK, WebhookNotificationResponse{
			Status: "[accepted]",
		})
	}
}

func (s *webService) authentic(username, password string) bool {
	if s.credentials.Username == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(username), []byte(s.credentials.Username)) == 1 &&
		subtle.ConstantTimeCompare([]byte(password), []byte(s.credentials.Password)) == 1
}

// processNotificationItem is idempotent: a notification for a widget that is
// no longer mounted is only logged.
func (s *webService) processNotificationItem(c context.Context, item NotificationRequestItem) {
	status, final := classifyEvent(item.EventCode, item.Success == "true")
	if !final {
		s.logger.Log(c, item.MerchantReference, mylog.SeverityInfo, "Webhook: ignored %s on %s", item.EventCode, item.PspReference)
		return
	}

	handleUID, found := s.registry.FindBySession(MethodName, item.AdditionalData.CheckoutSessionID)
	if !found {
		s.logger.Log(c, item.MerchantReference, mylog.SeverityWarn, "Webhook: no widget for session %s", item.AdditionalData.CheckoutSessionID)
		return
	}
	_, config, _ := s.registry.Get(handleUID)

	// the notification arrives outside the visitor's own requests
	unlock := s.locker.Lock(config.SessionUID)
	defer unlock()

	result, err := json.Marshal(map[string]string{
		"sessionId":    item.AdditionalData.CheckoutSessionID,
		"pspReference": item.PspReference,
		"eventCode":    item.EventCode,
		"success":      item.Success,
	})
	if err != nil {
		s.logger.Log(c, item.MerchantReference, mylog.SeverityError, "Webhook: error serializing result: %s", err)
		return
	}

	err = s.registry.Settle(c, handleUID, status, result)
	if err != nil {
		s.logger.Log(c, item.MerchantReference, mylog.SeverityError, "Webhook: error settling %s: %s", handleUID, err)
	}
}
