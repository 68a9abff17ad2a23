package auth

import (
	"context"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mystorage"
	"github.com/MarcGrol/storefront/lib/mytime"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(authenticator Authenticator, storage mystorage.Storage, nower mytime.Nower) *webService {
	logger := mylog.New("auth")
	return &webService{
		logger:  logger,
		service: newService(authenticator, storage, nower, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/login", s.login()).Methods("POST")
	router.HandleFunc("/register", s.register()).Methods("POST")
	router.HandleFunc("/logout", s.logout()).Methods("POST")
	router.HandleFunc("/me", s.me()).Methods("GET")
}

func (s *webService) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		credentials := Credentials{}
		err = formcodec.NewDecoder().Decode(&credentials, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}

		session, err := s.service.Login(c, credentials)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		registration := Registration{}
		err = formcodec.NewDecoder().Decode(&registration, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}

		session, err := s.service.Register(c, registration)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := s.service.Logout(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, Session{LoggedIn: false})
	}
}

func (s *webService) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.service.CurrentUser(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, session)
	}
}
