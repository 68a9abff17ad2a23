package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myhttpclient"
	"github.com/MarcGrol/storefront/lib/mylog"
)

var ErrCreatePreference = errors.New("failed to create preference")

//go:generate mockgen -source=service.go -package payments -destination service_mock.go Service
type Service interface {
	CreatePreference(c context.Context, items []Item) (string, error)
	ProcessPayment(c context.Context, formData json.RawMessage) (json.RawMessage, error)
}

type service struct {
	endpoint   string
	httpClient myhttpclient.HTTPSender
	logger     mylog.Logger
}

func New(endpoint string, httpClient myhttpclient.HTTPSender) Service {
	return &service{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     mylog.New("payments"),
	}
}

// CreatePreference asks the payment backend for a preference id for the given items.
func (s *service) CreatePreference(c context.Context, items []Item) (string, error) {
	payload, err := json.Marshal(createPreferenceRequest{Items: items})
	if err != nil {
		return "", fmt.Errorf("error serializing preference request: %s", err)
	}

	httpStatus, respBody, err := s.httpClient.Send(c, http.MethodPost, s.endpoint+"/create-preference", payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCreatePreference, err)
	}
	if !myhttpclient.IsSuccess(httpStatus) {
		return "", ErrCreatePreference
	}

	resp := createPreferenceResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: error parsing response: %s", ErrCreatePreference, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: response without id", ErrCreatePreference)
	}

	s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Created preference %s for %d items", resp.ID, len(items))

	return resp.ID, nil
}

// ProcessPayment relays the form data of a hosted payment form to the payment
// backend and returns its reply untouched.
func (s *service) ProcessPayment(c context.Context, formData json.RawMessage) (json.RawMessage, error) {
	httpStatus, respBody, err := s.httpClient.Send(c, http.MethodPost, s.endpoint+"/mercado-pago/process-payment", formData)
	if err != nil {
		return nil, fmt.Errorf("error processing payment: %w", err)
	}
	if !myhttpclient.IsSuccess(httpStatus) {
		return nil, fmt.Errorf("error processing payment: unexpected http-status %d", httpStatus)
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("error processing payment: response is not json")
	}

	return json.RawMessage(respBody), nil
}
