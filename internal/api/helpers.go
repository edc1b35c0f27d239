package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/labdesk/labdesk-server/internal/errors"
)

// toStatusError converts a service error into a huma.StatusError so the
// response status follows the domain code. Unknown errors are logged and
// reported as a generic 500.
func (s *Server) toStatusError(err error, op string) error {
	var statusErr huma.StatusError
	if errors.As(err, &statusErr) {
		return statusErr
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return huma.NewError(domainErr.HTTPStatus(), domainErr.Message, domainErr)
	}

	s.logger.Error("Unexpected error", "op", op, "error", err)
	return huma.Error500InternalServerError("internal server error")
}
