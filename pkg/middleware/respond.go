package middleware

import (
	"net/http"

	apperrors "travelbook/pkg/errors"
	httputil "travelbook/pkg/http"
	"travelbook/pkg/logger"
)

func reject(w http.ResponseWriter, log *logger.Logger, appErr *apperrors.AppError) {
	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("failed to write error response", "code", appErr.Code, "error", err)
	}
}
