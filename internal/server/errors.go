package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/provider"
	"github.com/roach88/jqcty/internal/query"
)

// Error kinds reported besides the query.ErrorKind values.
const (
	KindNotFound         = "NOT_FOUND"
	KindMethodNotAllowed = "METHOD_NOT_ALLOWED"
	KindInvalidRequest   = "INVALID_REQUEST"
	KindInvalidArguments = "INVALID_ARGUMENTS"
	KindTimeout          = "TIMEOUT"
	KindInternal         = "INTERNAL"
)

// classify maps err to an HTTP status and error kind.
//
//	MalformedInput, InvalidProgram   400
//	EvaluationFailure                422
//	unknown component                404
//	invalid arguments or config      400
//	request deadline exceeded        504
func classify(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, KindTimeout
	}

	switch kind := query.KindOf(err); kind {
	case query.MalformedInput, query.InvalidProgram:
		return http.StatusBadRequest, string(kind)
	case query.EvaluationFailure:
		return http.StatusUnprocessableEntity, string(kind)
	}

	switch {
	case errors.Is(err, provider.ErrNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, provider.ErrInvalidArguments):
		return http.StatusBadRequest, KindInvalidArguments
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

// writeFailure reports err with the status classify assigns it. When the
// request's own deadline passed, the Timeout middleware writes the 504 and
// nothing is written here.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		s.logger.Warn("request timed out", zap.String("path", r.URL.Path), zap.Error(err))
		return
	}

	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, status, kind, err.Error())
}

// writeError writes {"error": {"kind": kind, "message": message}}.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	body := native.NewMap(native.E("error", native.NewMap(
		native.E("kind", native.String(kind)),
		native.E("message", native.String(message)),
	)))
	writeBody(w, status, native.MustEncode(body))
}

// writeField writes {"<key>": <raw>} where raw is JSON text.
func writeField(w http.ResponseWriter, status int, key string, raw []byte) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.Write(native.MustEncode(native.String(key)))
	buf.WriteByte(':')
	buf.Write(raw)
	buf.WriteByte('}')
	writeBody(w, status, buf.Bytes())
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte{'\n'})
}
