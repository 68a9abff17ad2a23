package language

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
)

type webService struct {
	logger  mylog.Logger
	service *Service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(service *Service) *webService {
	return &webService{
		logger:  mylog.New("language"),
		service: service,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/language", s.getLanguage()).Methods("GET")
	router.HandleFunc("/language", s.changeLanguage()).Methods("PUT")
}

func (s *webService) getLanguage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		errorWriter.Write(c, w, http.StatusOK, Language{Language: s.service.Get(c)})
	}
}

func (s *webService) changeLanguage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		req := Language{}
		err = formcodec.NewDecoder().Decode(&req, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}

		err = s.service.Change(c, req.Language)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, Language{Language: s.service.Get(c)})
	}
}
