package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"digital.vasic.lessons/pkg/apperr"
	"digital.vasic.lessons/pkg/logging"
)

// maxBodyBytes bounds request bodies, submissions included.
const maxBodyBytes = 1 << 20

// JSONResponse is the envelope of every API response.
type JSONResponse struct {
	Status  string `json:"status"` // "success" or "error"
	Data    any    `json:"data,omitempty"`
	ErrCode string `json:"code,omitempty"`
	ErrMsg  string `json:"message,omitempty"`
}

func writeSuccessJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, JSONResponse{Status: "success", Data: data})
}

func writeErrorJSON(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	writeJSON(w, statusCode, JSONResponse{Status: "error", ErrMsg: errMsg, ErrCode: errCode})
}

func writeJSON(w http.ResponseWriter, status int, resp JSONResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// handleError writes err as an error envelope. Coded errors keep
// their status and message; anything else becomes a generic 500.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		s.logger.Error("internal server error",
			logging.StringField("path", r.URL.Path),
			logging.ErrorField(err),
		)
		writeErrorJSON(w, http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError, apperr.CodeInternal)
		return
	}

	fields := []logging.Field{
		logging.StringField("path", r.URL.Path),
		logging.StringField("code", ae.Code()),
		logging.ErrorField(err),
	}
	if ae.Debug() != nil {
		fields = append(fields, logging.StringField("debug", ae.Debug().Error()))
	}
	if ae.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.Error("internal server error", fields...)
	} else {
		s.logger.Debug("request error", fields...)
	}
	writeErrorJSON(w, ae.Error(), ae.HTTPStatus(), ae.Code())
}

// decodeBody decodes and validates a JSON request body into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.New("request_too_large", "request body is too large").
				SetHTTPStatus(http.StatusRequestEntityTooLarge)
		}
		return apperr.InvalidInput("request body is not valid JSON").SetDebug(err)
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperr.InvalidInput(validationMessage(verrs[0]))
		}
		return apperr.InvalidInput(err.Error())
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " is too long"
	default:
		return fe.Field() + " is invalid"
	}
}
