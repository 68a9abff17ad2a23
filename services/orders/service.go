package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/myhttpclient"
)

//go:generate mockgen -source=service.go -package orders -destination submitter_mock.go Submitter
type Submitter interface {
	Submit(c context.Context, order Order) (Acknowledgement, error)
}

type service struct {
	endpoint   string
	httpClient myhttpclient.HTTPSender
	logger     mylog.Logger
}

func New(endpoint string, httpClient myhttpclient.HTTPSender) Submitter {
	return &service{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     mylog.New("orders"),
	}
}

// Submit records the order with a single POST. Transport failures and
// non-2xx replies are returned as error.
func (s *service) Submit(c context.Context, order Order) (Acknowledgement, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("error serializing order: %s", err)
	}

	httpStatus, respBody, err := s.httpClient.Send(c, http.MethodPost, s.endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("error submitting order: %w", err)
	}
	if !myhttpclient.IsSuccess(httpStatus) {
		return nil, fmt.Errorf("error submitting order: unexpected http-status %d", httpStatus)
	}

	s.logger.Log(c, mycontext.SessionUIDFromContext(c), mylog.SeverityInfo, "Submitted order with total %d (%d items)", order.Total, len(order.Items))

	return Acknowledgement(respBody), nil
}
