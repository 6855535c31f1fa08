package handlers

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"commerce-dashboard/internal/errors"
	"commerce-dashboard/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// windowParams is the date range a dashboard request asks for. Both ends are
// optional and default to the loaded dataset's bounds.
type windowParams struct {
	Start string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

func windowFromQuery(r *http.Request) windowParams {
	query := r.URL.Query()
	return windowParams{
		Start: strings.TrimSpace(query.Get("start")),
		End:   strings.TrimSpace(query.Get("end")),
	}
}

// resolve validates p and fills missing ends from fallback. An inverted range
// is accepted and simply selects no rows.
func (p windowParams) resolve(fallback models.Window) (models.Window, error) {
	if err := validate.Struct(p); err != nil {
		return models.Window{}, validationError(err)
	}

	w := fallback
	if p.Start != "" {
		w.Start, _ = time.Parse(time.DateOnly, p.Start)
	}
	if p.End != "" {
		w.End, _ = time.Parse(time.DateOnly, p.End)
	}
	return w, nil
}

func validationError(err error) *errors.AppError {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Wrap(err, errors.CodeValidation, "invalid date range")
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		switch fieldErr.Tag() {
		case "datetime":
			details[fieldErr.Field()] = "must be a date formatted as YYYY-MM-DD"
		default:
			details[fieldErr.Field()] = "is invalid"
		}
	}
	return errors.Validation("invalid date range").WithDetails(details)
}
