package handler

import (
	"category-api/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// maxBodyBytes bounds request bodies accepted by the API.
const maxBodyBytes = 1 << 20

// maxNameLength is the column width of categories.name, in characters.
const maxNameLength = 100

var (
	validate = newValidator()
	// stripTags removes all markup from plain-text fields such as names.
	stripTags = bluemonday.StrictPolicy()
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// createCategoryRequest is the body of POST /api/categories.
type createCategoryRequest struct {
	BigCategory   string `json:"big_category" validate:"required,max=100"`
	SmallCategory string `json:"small_category" validate:"max=2000"`
	Description   string `json:"description" validate:"max=1000"`
}

// updateCategoryRequest is the body of POST /api/categories/{id}. Absent
// fields are left unchanged.
type updateCategoryRequest struct {
	BigCategory   *string `json:"big_category" validate:"omitnil,min=1,max=100"`
	SmallCategory *string `json:"small_category" validate:"omitnil,max=2000"`
	Description   *string `json:"description" validate:"omitnil,max=1000"`
}

// sortCategoriesRequest is the body of POST /api/categories/all/sort.
type sortCategoriesRequest struct {
	IDs []string `json:"ids" validate:"required,dive,required"`
}

// decodeAndValidate reads a JSON body into dst and validates it. Failures are
// returned as parameter:invalid errors naming the offending field.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return service.InvalidParam(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field))
		}
		return service.InvalidParam("body", "malformed JSON body")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return service.InvalidParam(fe.Field(), fieldMessage(fe))
		}
		return err
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fe.Field() + " must not be empty"
	default:
		return fe.Field() + " is invalid"
	}
}

// plain strips markup from a user supplied name. Entities the policy escapes
// are decoded again since names are stored as text.
func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(s)))
}

// plainPtr is plain for optional fields.
func plainPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := plain(*s)
	return &v
}

// subCategoryNames splits a semicolon separated list and strips markup from
// each name. Every name must fit the name column.
func subCategoryNames(s string) ([]string, error) {
	parts := service.SplitNames(s)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		name := plain(p)
		if utf8.RuneCountInString(name) > maxNameLength {
			return nil, service.InvalidParam("small_category",
				fmt.Sprintf("each small_category name must be at most %d characters", maxNameLength))
		}
		out = append(out, name)
	}
	return out, nil
}
