// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/guildstats/internal/ingest"
	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/models"
	"github.com/tomtom215/guildstats/internal/validation"
)

// writeServiceError maps the error taxonomy onto HTTP statuses. Internal
// errors are logged and their text withheld from the client.
func writeServiceError(rw *ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		rw.ValidationError("Request validation failed", verr.Fields)
	case errors.Is(err, ingest.ErrGuildPaused):
		rw.Error(http.StatusConflict, ErrCodeGuildPaused, err.Error())
	case errors.Is(err, ingest.ErrStoreUnavailable):
		rw.ServiceUnavailable("message store temporarily unavailable")
	case errors.Is(err, models.ErrInvalidArgument):
		rw.BadRequest(err.Error())
	case errors.Is(err, models.ErrNotFound):
		rw.NotFound(err.Error())
	case errors.Is(err, models.ErrAlreadyExists):
		rw.Conflict(err.Error())
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Str("path", rw.r.URL.Path).Msg("Request failed")
		rw.InternalError("an internal error occurred")
	}
}
