package utils

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteErrorAndStatusCode writes err with its status code.
// Errors without a status code are logged and reported as a generic 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *errors.ErrorWithStatusCode
	if stderrors.As(err, &e) {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	logger.Log.Error("internal error", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// DecodeRequest decodes a JSON or urlencoded form body into body and validates it.
func DecodeRequest(r *http.Request, body any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		return DecodeFormValidate(r.Body, body)
	}
	return DecodeValidate(r.Body, body)
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return decodeError(err)
	}
	return nil
}

// DecodeFormValidate maps the first value of every form field onto the json tags of body.
// The form is read from the body directly because http.Request.ParseForm ignores DELETE bodies.
func DecodeFormValidate(r io.ReadCloser, body any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return decodeError(err)
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return &errors.ErrorWithStatusCode{Message: "Body is invalid form", StatusCode: http.StatusBadRequest}
	}

	fields := make(map[string]string, len(values))
	for key, v := range values {
		if len(v) > 0 {
			fields[key] = v[0]
		}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return DecodeValidate(io.NopCloser(bytes.NewReader(encoded)), body)
}

func decodeError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return &errors.ErrorWithStatusCode{Message: "Body is too large", StatusCode: http.StatusRequestEntityTooLarge}
	}
	logger.Log.Debug("request decoding failed", "error", err)
	return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
}
