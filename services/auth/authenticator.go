package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MarcGrol/storefront/lib/myhttpclient"
)

//go:generate mockgen -source=authenticator.go -package auth -destination authenticator_mock.go Authenticator
type Authenticator interface {
	Login(c context.Context, credentials Credentials) (LoginResponse, error)
	Register(c context.Context, registration Registration) (LoginResponse, error)
}

type authenticator struct {
	endpoint   string
	httpClient myhttpclient.HTTPSender
}

func NewAuthenticator(endpoint string, httpClient myhttpclient.HTTPSender) Authenticator {
	return &authenticator{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

func (a *authenticator) Login(c context.Context, credentials Credentials) (LoginResponse, error) {
	return a.post(c, "/login", credentials)
}

func (a *authenticator) Register(c context.Context, registration Registration) (LoginResponse, error) {
	return a.post(c, "/register", registration)
}

func (a *authenticator) post(c context.Context, path string, request any) (LoginResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("error serializing request: %s", err)
	}

	httpStatus, respBody, err := a.httpClient.Send(c, http.MethodPost, a.endpoint+path, payload)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("error calling %s: %w", path, err)
	}
	if !myhttpclient.IsSuccess(httpStatus) {
		return LoginResponse{}, fmt.Errorf("error calling %s: unexpected http-status %d", path, httpStatus)
	}

	resp := LoginResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("error parsing response of %s: %s", path, err)
	}

	return resp, nil
}
