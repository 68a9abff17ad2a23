package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/myconfig"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/myhttpclient"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystorage"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/auth"
	"github.com/MarcGrol/storefront/services/cart"
	"github.com/MarcGrol/storefront/services/catalog"
	"github.com/MarcGrol/storefront/services/checkout"
	"github.com/MarcGrol/storefront/services/language"
	"github.com/MarcGrol/storefront/services/orders"
	"github.com/MarcGrol/storefront/services/paymentadyen"
	"github.com/MarcGrol/storefront/services/paymentapi"
	"github.com/MarcGrol/storefront/services/paymentmercadopago"
	"github.com/MarcGrol/storefront/services/paymentmollie"
	"github.com/MarcGrol/storefront/services/payments"
	"github.com/MarcGrol/storefront/services/paymentstripe"
	"github.com/MarcGrol/storefront/services/warmup"
)

func main() {
	c := context.Background()

	cfg := myconfig.Load()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	itemStore, itemStoreCleanup, err := mystore.New[mystorage.Item](c, cfg.GoogleCloudProject, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer itemStoreCleanup()
	storage := mystorage.New(itemStore)

	publisher, publisherCleanup, err := mypublisher.New(c, cfg.GoogleCloudProject, cfg.KafkaBrokers, nower)
	if err != nil {
		log.Fatalf("Error creating event publisher: %s", err)
	}
	defer publisherCleanup()

	httpClient := myhttpclient.New(mylog.New("httpclient"))
	paymentService := payments.New(cfg.PaymentsEndpoint, httpClient)
	registry := paymentapi.NewRegistry()
	languageService := language.NewService(storage)

	molliePayer, err := paymentmollie.NewPayer()
	if err != nil {
		log.Fatalf("Error creating mollie payer: %s", err)
	}
	stripePayer := paymentstripe.NewPayer()
	adyenPayer := paymentadyen.NewPayer(cfg.AdyenEnvironment)

	widgets := []paymentapi.Widget{
		paymentmercadopago.NewWidget(cfg.MercadoPagoPublicKey, uuider),
		paymentstripe.NewWidget(cfg.StripeAPIKey, stripePayer, uuider),
		paymentmollie.NewWidget(cfg.MollieAPIKey, molliePayer, uuider),
		paymentadyen.NewWidget(paymentadyen.Config{
			Environment:     cfg.AdyenEnvironment,
			MerchantAccount: cfg.AdyenMerchantAccount,
			ClientKey:       cfg.AdyenClientKey,
			APIKey:          cfg.AdyenAPIKey,
		}, adyenPayer, uuider),
	}

	locker := mystorage.NewLocker()

	router := mux.NewRouter()
	router.Use(myhttp.SessionMiddleware(uuider))
	router.Use(locker.Middleware)

	catalogService := catalog.NewWebService(cfg.Currency)
	catalogService.RegisterEndpoints(c, router)

	cart.NewWebService(storage, catalogService).RegisterEndpoints(c, router)

	checkout.NewWebService(storage, orders.New(cfg.OrdersEndpoint, httpClient), paymentService, widgets, registry,
		languageService, cfg.Currency, publisher).RegisterEndpoints(c, router)

	paymentapi.NewWebService(registry).RegisterEndpoints(c, router)
	paymentmercadopago.NewWebService(paymentService, registry).RegisterEndpoints(c, router)
	paymentstripe.NewWebService(stripePayer, registry).RegisterEndpoints(c, router)
	paymentmollie.NewWebService(molliePayer, registry).RegisterEndpoints(c, router)
	paymentadyen.NewWebService(registry, locker, paymentadyen.WebhookCredentials{
		Username: cfg.AdyenWebhookUsername,
		Password: cfg.AdyenWebhookPassword,
	}).RegisterEndpoints(c, router)

	auth.NewWebService(auth.NewAuthenticator(cfg.AuthEndpoint, httpClient), storage, nower).RegisterEndpoints(c, router)
	language.NewWebService(languageService).RegisterEndpoints(c, router)
	warmup.NewWebService(widgets, publisher, uuider).RegisterEndpoints(c, router)

	startWebServerBlocking(cfg.Port, router)
}

func startWebServerBlocking(port string, router *mux.Router) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
