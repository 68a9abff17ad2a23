package cart

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
	"github.com/MarcGrol/storefront/services/catalog"
)

type ProductGetter interface {
	Get(c context.Context, id string) (catalog.Product, error)
}

type webService struct {
	logger   mylog.Logger
	storage  mystorage.Storage
	products ProductGetter
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(storage mystorage.Storage, products ProductGetter) *webService {
	return &webService{
		logger:   mylog.New("cart"),
		storage:  storage,
		products: products,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/cart", s.cartPage()).Methods("GET")
	router.HandleFunc("/cart", s.clearCart()).Methods("DELETE")
	router.HandleFunc("/cart/items", s.addToCart()).Methods("POST")
	router.HandleFunc("/cart/items/{productID}/decrease", s.decreaseQuantity()).Methods("POST")
	router.HandleFunc("/cart/items/{productID}", s.removeFromCart()).Methods("DELETE")
}

func (s *webService) loadCart(c context.Context) *Manager {
	m := NewManager(s.storage, s.logger)
	m.Load(c)
	return m
}

func (s *webService) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		m := s.loadCart(c)

		errorWriter.Write(c, w, http.StatusOK, m.View())
	}
}

func (s *webService) addToCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		req := AddItemRequest{}
		err = formcodec.NewDecoder().Decode(&req, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}
		if req.ProductID == "" {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(fmt.Errorf("missing productId")))
			return
		}

		product, err := s.products.Get(c, req.ProductID)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		m := s.loadCart(c)
		m.AddToCart(c, product)

		s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Added product %s to cart", product.ID)

		errorWriter.Write(c, w, http.StatusOK, m.View())
	}
}

func (s *webService) decreaseQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		m := s.loadCart(c)
		m.DecreaseQuantity(c, mux.Vars(r)["productID"])

		errorWriter.Write(c, w, http.StatusOK, m.View())
	}
}

func (s *webService) removeFromCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		m := s.loadCart(c)
		m.RemoveFromCart(c, mux.Vars(r)["productID"])

		errorWriter.Write(c, w, http.StatusOK, m.View())
	}
}

func (s *webService) clearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		m := s.loadCart(c)
		m.ClearCart(c)

		errorWriter.Write(c, w, http.StatusOK, m.View())
	}
}
