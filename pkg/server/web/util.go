package web

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	successJsonKey = "success"
	dataJsonKey    = "data"
	errorJsonKey   = "error"

	contentTypeHeaderName      = "content-type"
	jsonContentTypeHeaderValue = "application/json"
)

type GenericApiResponseBody map[string]any

func NewGenericApiSuccessResponseBody(data any) GenericApiResponseBody {
	return map[string]any{
		successJsonKey: true,
		dataJsonKey:    data,
	}
}

func NewGenericApiFailureResponseBody(err error) GenericApiResponseBody {
	return map[string]any{
		successJsonKey: false,
		errorJsonKey:   err.Error(),
	}
}

func (b *GenericApiResponseBody) ToString() string {
	marshalled, _ := json.Marshal(b)
	return string(marshalled)
}

func (b GenericApiResponseBody) IsSuccess() bool {
	success, _ := b[successJsonKey].(bool)
	return success
}

func writeResponse(w http.ResponseWriter, log *logrus.Entry, statusCode int, body GenericApiResponseBody) {
	w.Header().Set(contentTypeHeaderName, jsonContentTypeHeaderValue)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(body.ToString())); err != nil {
		log.WithError(err).Warn("failed to write body")
	}
}
