package web

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// uploadForm holds the non-file fields of an upload. The entity type is
// checked against the supported set by the service so that a bad value
// still produces a FAILED run.
type uploadForm struct {
	EntityType string `validate:"max=64,printascii"`
	Async      string `validate:"omitempty,oneof=true false 1 0 TRUE FALSE True False"`
}

func parseUploadForm(r *http.Request) (uploadForm, error) {
	f := uploadForm{
		EntityType: r.FormValue("entityType"),
		Async:      r.FormValue("async"),
	}
	return f, validate.Struct(f)
}

// async reports the parsed async flag. Validation already rejected
// anything ParseBool does not accept.
func (f uploadForm) async() bool {
	b, _ := strconv.ParseBool(f.Async)
	return b
}

type listRunsQuery struct {
	Limit int `validate:"gte=0,lte=1000"`
}

func parseListRunsQuery(r *http.Request) (listRunsQuery, error) {
	var q listRunsQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, err
		}
		q.Limit = n
	}
	return q, validate.Struct(q)
}
