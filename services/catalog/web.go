package catalog

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(currency string) *webService {
	logger := mylog.New("catalog")
	return &webService{
		logger:  logger,
		service: newService(currency, logger),
	}
}

// Get makes the catalog usable as product lookup for the cart.
func (s *webService) Get(c context.Context, id string) (Product, error) {
	return s.service.Get(c, id)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/", s.homePage()).Methods("GET")
	router.HandleFunc("/products", s.productsPage()).Methods("GET")
	router.HandleFunc("/products/{productID}", s.productPage()).Methods("GET")
}

func (s *webService) homePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		errorWriter.Write(c, w, http.StatusOK, s.service.Home(c))
	}
}

func (s *webService) productsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		products := s.service.List(c, r.URL.Query().Get("category"))

		errorWriter.Write(c, w, http.StatusOK, products)
	}
}

func (s *webService) productPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		product, err := s.service.Get(c, mux.Vars(r)["productID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, product)
	}
}
