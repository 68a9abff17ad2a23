package contracttests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/myuuid"
)

type BackendUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// FakeBackend serves the orders, payments and auth api of the storefront
// backend from memory.
type FakeBackend struct {
	sync.Mutex
	uuider myuuid.RealUUIDer
	Users  *mystore.InMemoryStore[BackendUser]
	Orders []json.RawMessage
}

func NewFakeBackend() *FakeBackend {
	store, _, _ := mystore.NewInMemoryStore[BackendUser](context.Background())
	return &FakeBackend{
		Users:  store,
		Orders: []json.RawMessage{},
	}
}

func (b *FakeBackend) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/posts", b.createOrder).Methods("POST")
	router.HandleFunc("/create-preference", b.createPreference).Methods("POST")
	router.HandleFunc("/mercado-pago/process-payment", b.processPayment).Methods("POST")
	router.HandleFunc("/auth/register", b.register).Methods("POST")
	router.HandleFunc("/auth/login", b.login).Methods("POST")
	return router
}

func (b *FakeBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	order := json.RawMessage{}
	err := json.NewDecoder(r.Body).Decode(&order)
	if err != nil {
		write(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	b.Lock()
	b.Orders = append(b.Orders, order)
	id := len(b.Orders) + 100
	b.Unlock()

	write(w, http.StatusCreated, map[string]int{"id": id})
}

func (b *FakeBackend) createPreference(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Items []json.RawMessage `json:"items"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || len(req.Items) == 0 {
		write(w, http.StatusBadRequest, map[string]string{"message": "no items"})
		return
	}

	write(w, http.StatusOK, map[string]string{"id": "pref_" + b.uuider.Create()})
}

// processPayment declines every payment of dave@example.com.
func (b *FakeBackend) processPayment(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Payer struct {
			Email string `json:"email"`
		} `json:"payer"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		write(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if req.Payer.Email == "dave@example.com" {
		write(w, http.StatusPaymentRequired, map[string]string{"status": "rejected"})
		return
	}

	write(w, http.StatusOK, map[string]string{"status": "approved", "id": b.uuider.Create()})
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		write(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	_, exists, _ := b.Users.Get(r.Context(), req.Email)
	if exists {
		write(w, http.StatusConflict, map[string]string{"message": fmt.Sprintf("user %s exists", req.Email)})
		return
	}

	user := BackendUser{ID: b.uuider.Create(), Name: req.Name, Email: req.Email, Password: req.Password}
	_ = b.Users.Put(r.Context(), user.Email, user)

	write(w, http.StatusCreated, map[string]any{"token": "token_" + user.ID, "user": user})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		write(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	user, exists, _ := b.Users.Get(r.Context(), req.Email)
	if !exists || user.Password != req.Password {
		write(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}

	write(w, http.StatusOK, map[string]any{"token": "token_" + user.ID, "user": user})
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
