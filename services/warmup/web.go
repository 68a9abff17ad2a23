package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/paymentapi"
)

type Result struct {
	Loaded []string `json:"loaded"`
	Failed []string `json:"failed"`
}

type webService struct {
	logger    mylog.Logger
	widgets   []paymentapi.Widget
	publisher mypublisher.Publisher
	uuider    myuuid.UUIDer
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(widgets []paymentapi.Widget, publisher mypublisher.Publisher, uuider myuuid.UUIDer) *webService {
	return &webService{
		logger:    mylog.New("warmup"),
		widgets:   widgets,
		publisher: publisher,
		uuider:    uuider,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

// warmupPage loads the payment SDKs before the first buyer needs them. A
// provider that fails to load is reported and tried again on first use.
func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		result := Result{
			Loaded: []string{},
			Failed: []string{},
		}
		for _, widget := range s.widgets {
			err := widget.Load(c)
			if err != nil {
				s.logger.Log(c, "", mylog.SeverityWarn, "Error loading %s sdk: %s", widget.Method(), err)
				result.Failed = append(result.Failed, widget.Method())
				continue
			}
			result.Loaded = append(result.Loaded, widget.Method())
		}

		err := s.publisher.Publish(c, TopicName, WarmupKicked{
			UID:           s.uuider.Create(),
			LoadedMethods: result.Loaded,
			FailedMethods: result.Failed,
		})
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityError, "Error publishing warmup event: %s", err)
		}

		errorWriter.Write(c, w, http.StatusOK, result)
	}
}
