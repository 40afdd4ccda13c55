package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"clubhub-backend/internal/domain"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a JSON body into dst and runs its validate tags.
// An empty body is accepted when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "malformed request body")
		}
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "invalid request")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "invalid request: %s", strings.Join(fields, ", "))
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "invalid %s", name)
	}
	return int32(id), nil
}

func queryInt(r *http.Request, name string, def int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return def
	}
	return int32(v)
}

type createRegistrationRequest struct {
	PackageID  int32  `json:"packageId" validate:"required,gt=0"`
	JoinReason string `json:"joinReason" validate:"required,max=1000"`
}

type renewRegistrationRequest struct {
	PackageID *int32 `json:"packageId" validate:"omitempty,gt=0"`
}

type approveRegistrationRequest struct {
	SubscriptionID int32  `json:"subscriptionId" validate:"required,gt=0"`
	Status         string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

type subscriptionRequest struct {
	SubscriptionID int32 `json:"subscriptionId" validate:"required,gt=0"`
}
