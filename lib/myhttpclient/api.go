package myhttpclient

import (
	"context"

	"github.com/MarcGrol/storefront/lib/mylog"
)

//go:generate mockgen -source=api.go -package myhttpclient -destination http_sender_mock.go HTTPSender
type HTTPSender interface {
	Send(c context.Context, method string, url string, body []byte) (int, []byte, error)
}

func New(logger mylog.Logger) HTTPSender {
	return newJSONHTTPClient(logger)
}

func IsSuccess(httpStatus int) bool {
	return httpStatus >= 200 && httpStatus < 300
}
