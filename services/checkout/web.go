package checkout

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
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystorage"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/orders"
	"github.com/MarcGrol/storefront/services/paymentapi"
	"github.com/MarcGrol/storefront/services/payments"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(storage mystorage.Storage, orderSubmitter orders.Submitter, paymentService payments.Service,
	widgets []paymentapi.Widget, registry *paymentapi.Registry, locale LocaleGetter, currency string,
	publisher mypublisher.Publisher) *webService {

	logger := mylog.New("checkout")
	return &webService{
		logger: logger,
		service: newService(storage, orderSubmitter, paymentService, widgets, registry, locale, currency,
			publisher, mytime.RealNower{}, myuuid.RealUUIDer{}, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc(paymentapi.CheckoutPath, s.checkoutPage()).Methods("GET")
	router.HandleFunc(paymentapi.CheckoutPath, s.submit()).Methods("POST")
	router.HandleFunc("/checkout/form", s.changeForm()).Methods("PUT")
	router.HandleFunc("/checkout/method", s.setMethod()).Methods("PUT")
	router.HandleFunc("/checkout/widget/close", s.closeWidget()).Methods("POST")
	router.HandleFunc(paymentapi.ConfirmationPath, s.orderSummaryPage()).Methods("GET")
}

func (s *webService) checkoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		errorWriter.Write(c, w, http.StatusOK, s.service.View(c))
	}
}

func (s *webService) changeForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		view := s.service.View(c)
		for field, values := range r.PostForm {
			if len(values) == 0 {
				continue
			}
			view, err = s.service.HandleChange(c, field, values[0])
			if err != nil {
				errorWriter.WriteError(c, w, 2, err)
				return
			}
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) setMethod() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		req := MethodRequest{}
		err = formcodec.NewDecoder().Decode(&req, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}

		view, err := s.service.SetMethod(c, req.Method)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.Submit(c, myhttp.HostnameWithScheme(r))
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) closeWidget() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.CloseWidget(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) orderSummaryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		summary, err := s.service.Confirmation(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, summary)
	}
}
