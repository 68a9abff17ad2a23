package auth

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgrijalva/jwt-go"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mystorage"
	"github.com/MarcGrol/storefront/lib/mytime"
)

type service struct {
	authenticator Authenticator
	storage       mystorage.Storage
	nower         mytime.Nower
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(authenticator Authenticator, storage mystorage.Storage, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		authenticator: authenticator,
		storage:       storage,
		nower:         nower,
		logger:        logger,
	}
}

func (s *service) Login(c context.Context, credentials Credentials) (Session, error) {
	if credentials.Email == "" || credentials.Password == "" {
		return Session{}, myerrors.NewInvalidInputError(errors.New(loginRequiredMessage))
	}

	resp, err := s.authenticator.Login(c, credentials)
	if err != nil {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityWarn, "Login of %s failed: %s", credentials.Email, err)
		return Session{}, myerrors.NewAuthenticationError(errors.New(loginFailedMessage))
	}

	return s.performLogin(c, resp)
}

func (s *service) Register(c context.Context, registration Registration) (Session, error) {
	if registration.Name == "" || registration.Email == "" || registration.Password == "" {
		return Session{}, myerrors.NewInvalidInputError(errors.New(registerRequiredMessage))
	}

	resp, err := s.authenticator.Register(c, registration)
	if err != nil {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityWarn, "Registration of %s failed: %s", registration.Email, err)
		return Session{}, myerrors.NewInvalidInputError(errors.New(registerFailedMessage))
	}

	return s.performLogin(c, resp)
}

func (s *service) performLogin(c context.Context, resp LoginResponse) (Session, error) {
	user := resp.User
	if len(user) == 0 || !json.Valid(user) {
		user = json.RawMessage(`{}`)
	}

	err := s.storage.SetItem(c, mystorage.KeyUser, string(user))
	if err != nil {
		return Session{}, err
	}
	err = s.storage.SetItem(c, mystorage.KeyToken, resp.Token)
	if err != nil {
		return Session{}, err
	}

	return Session{LoggedIn: true, User: user}, nil
}

func (s *service) Logout(c context.Context) error {
	err := s.storage.RemoveItem(c, mystorage.KeyUser)
	if err != nil {
		return err
	}
	return s.storage.RemoveItem(c, mystorage.KeyToken)
}

// CurrentUser reports the stored user. A token that carries an expiry in
// the past ends the login.
func (s *service) CurrentUser(c context.Context) (Session, error) {
	raw, found, err := s.storage.GetItem(c, mystorage.KeyUser)
	if err != nil {
		return Session{}, err
	}
	if !found || !json.Valid([]byte(raw)) {
		return Session{LoggedIn: false}, nil
	}

	token, found, err := s.storage.GetItem(c, mystorage.KeyToken)
	if err != nil {
		return Session{}, err
	}
	if found && s.isExpired(token) {
		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Stored token expired")
		return Session{LoggedIn: false}, s.Logout(c)
	}

	return Session{LoggedIn: true, User: json.RawMessage(raw)}, nil
}

// isExpired inspects the claims only; the signature is not verified.
func (s *service) isExpired(token string) bool {
	claims := &jwt.StandardClaims{}
	_, _, err := new(jwt.Parser).ParseUnverified(token, claims)
	if err != nil {
		return false
	}
	return claims.ExpiresAt != 0 && claims.ExpiresAt < s.nower.Now().Unix()
}
