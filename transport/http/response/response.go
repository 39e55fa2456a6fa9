package response

import (
	"encoding/json"
	"net/http"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/logger"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

// Error carries the failure message and its stable kind, e.g. "room_unavailable".
type Error struct {
	Error *string `json:"error,omitempty"`
	Kind  string  `json:"kind,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Message: &message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	response(writer, code, Data[any]{Data: &jsonPayload})
}

// WithError sends the error message with the status code and kind of its failure.
// Unclassified errors are reported as internal without leaking their text.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	kind := failure.GetKind(err)

	errMsg := err.Error()
	if code >= http.StatusInternalServerError {
		logger.ErrorWithStack(err)

		errMsg = http.StatusText(code)
	}

	response(writer, code, Error{Error: &errMsg, Kind: kind})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
