package paymentadyen

import (
	"context"
	"strings"

	"github.com/adyen/adyen-go-api-library/v6/src/adyen"
	"github.com/adyen/adyen-go-api-library/v6/src/checkout"
	"github.com/adyen/adyen-go-api-library/v6/src/common"
)

//go:generate mockgen -source=payer.go -package paymentadyen -destination payer_mock.go Payer
type Payer interface {
	UseAPIKey(key string)
	Sessions(ctx context.Context, req checkout.CreateCheckoutSessionRequest) (checkout.CreateCheckoutSessionResponse, error)
}

type adyenPayer struct {
	client *adyen.APIClient
}

func NewPayer(environment string) Payer {
	return &adyenPayer{
		client: adyen.NewClient(&common.Config{
			Environment: common.Environment(strings.ToUpper(environment)),
			Debug:       false,
		}),
	}
}

func (p *adyenPayer) UseAPIKey(apiKey string) {
	p.client.GetConfig().ApiKey = apiKey
}

func (p *adyenPayer) Sessions(ctx context.Context, req checkout.CreateCheckoutSessionRequest) (checkout.CreateCheckoutSessionResponse, error) {
	resp, _, err := p.client.Checkout.Sessions(&req, ctx)
	if err != nil {
		return checkout.CreateCheckoutSessionResponse{}, err
	}
	return resp, nil
}
