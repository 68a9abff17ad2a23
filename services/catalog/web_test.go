package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService(t *testing.T) {

	t.Run("Home page", func(t *testing.T) {
		// setup
		router := setup()

		// when
		request, err := http.NewRequest(http.MethodGet, "/", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		home := HomePage{}
		err = json.Unmarshal(response.Body.Bytes(), &home)
		require.NoError(t, err)
		assert.Equal(t, "Welcome to MyStore", home.Title)
		assert.Len(t, home.Categories, 4)
		assert.Len(t, home.Featured, 4)
	})

	t.Run("List all products", func(t *testing.T) {
		// setup
		router := setup()

		// when
		request, err := http.NewRequest(http.MethodGet, "/products", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := []Product{}
		err = json.Unmarshal(response.Body.Bytes(), &got)
		require.NoError(t, err)
		assert.Len(t, got, len(products))
		assert.Equal(t, "CLP", got[0].Currency)
	})

	t.Run("List products of category", func(t *testing.T) {
		// setup
		router := setup()

		// when
		request, err := http.NewRequest(http.MethodGet, "/products?category=Games", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := []Product{}
		err = json.Unmarshal(response.Body.Bytes(), &got)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, p := range got {
			assert.Equal(t, "games", p.Category)
		}
	})

	t.Run("Get product", func(t *testing.T) {
		// setup
		router := setup()

		// when
		request, err := http.NewRequest(http.MethodGet, "/products/3", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := Product{}
		err = json.Unmarshal(response.Body.Bytes(), &got)
		require.NoError(t, err)
		assert.Equal(t, "Wireless headphones", got.Name)
	})

	t.Run("Get product not exists", func(t *testing.T) {
		// setup
		router := setup()

		// when
		request, err := http.NewRequest(http.MethodGet, "/products/999", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 404, response.Code)
	})
}

func setup() *mux.Router {
	router := mux.NewRouter()
	NewWebService("CLP").RegisterEndpoints(context.TODO(), router)
	return router
}
