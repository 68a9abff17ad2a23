package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
)

const featuredCount = 4

type service struct {
	currency string
	products []Product
	logger   mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(currency string, logger mylog.Logger) *service {
	priced := make([]Product, 0, len(products))
	for _, p := range products {
		p.Currency = currency
		priced = append(priced, p)
	}

	return &service{
		currency: currency,
		products: priced,
		logger:   logger,
	}
}

// List returns the products of the given category, or all products when category is empty.
func (s *service) List(c context.Context, category string) []Product {
	result := []Product{}
	for _, p := range s.products {
		if category == "" || strings.EqualFold(p.Category, category) {
			result = append(result, p)
		}
	}
	return result
}

func (s *service) Get(c context.Context, id string) (Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, myerrors.NewNotFoundError(fmt.Errorf("product with id %s not found", id))
}

func (s *service) Home(c context.Context) HomePage {
	featured := s.products
	if len(featured) > featuredCount {
		featured = featured[:featuredCount]
	}

	return HomePage{
		Title:      "Welcome to MyStore",
		Subtitle:   "Find the best products with secure and fast payments",
		Categories: categories,
		Featured:   featured,
	}
}
