package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/http/response"
)

// EnvelopeVersion is the envelope format version sent in every response.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in response.Envelope.
// Successful bodies become data; errors become code, message and details.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if _, ok := v.(response.Envelope); ok {
		return v, nil
	}

	code, err := strconv.Atoi(status)
	if err != nil {
		code = http.StatusOK
	}

	if code < 400 {
		if _, isErr := v.(error); !isErr {
			return response.Envelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
		}
	}

	return errorEnvelope(code, v), nil
}

func errorEnvelope(status int, v any) response.Envelope {
	env := response.Envelope{Version: EnvelopeVersion, Success: false}

	var apiErr *APIError
	var domainErr *domainerrors.Error
	var model *huma.ErrorModel

	switch e := v.(type) {
	case *APIError:
		apiErr = e
	case *domainerrors.Error:
		domainErr = e
	case *huma.ErrorModel:
		model = e
	case error:
		switch {
		case errors.As(e, &apiErr), errors.As(e, &domainErr), errors.As(e, &model):
		default:
			env.Code = statusToCode(status)
			env.Message = e.Error()
			if status >= 500 {
				env.Message = internalMessage
			}
			return env
		}
	default:
		env.Code = statusToCode(status)
		env.Message = http.StatusText(status)
		return env
	}

	switch {
	case apiErr != nil:
		env.Code = apiErr.Code
		env.Message = apiErr.Message
		env.Details = apiErr.Details
	case domainErr != nil:
		env.Code = string(domainErr.Code)
		env.Message = domainErr.Message
		env.Details = domainErr.Details
		if domainErr.Code == domainerrors.CodeInternal {
			env.Message = internalMessage
			env.Details = nil
		}
	case model != nil:
		env.Code = statusToCode(model.Status)
		env.Message = model.Detail
		if env.Message == "" {
			env.Message = model.Title
		}
		if len(model.Errors) > 0 {
			errs := make([]error, len(model.Errors))
			for i, d := range model.Errors {
				errs[i] = d
			}
			env.Details = validationDetails(errs)
		}
	}
	return env
}
