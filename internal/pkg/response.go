package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/bglist/internal/domain"
)

// Response is the JSON envelope for errors outside the catalog page format.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse reports rejected request body fields, keyed by
// their JSON name.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// ListValidationResponse reports every rejected list parameter.
type ListValidationResponse struct {
	Code    int                `json:"code"`
	Message string             `json:"message"`
	Errors  []domain.Violation `json:"errors"`
}

// Page writes the page envelope as the whole 200 body.
func Page[D any](c *gin.Context, page domain.Page[D]) {
	if page.Links == nil {
		page.Links = []domain.Link{}
	}
	c.JSON(http.StatusOK, page)
}

// Error writes err with the status chosen by domain.HTTPStatusCode. Causes
// behind an *domain.AppError never reach the client; only its message does.
// Error bodies are never cacheable, whatever profile the route carries.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)
	c.Header("Cache-Control", "no-store")

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(status, ListValidationResponse{Code: status, Message: "invalid list request", Errors: vErr.Violations})
		return
	}

	c.JSON(status, Response{Code: status, Message: errorMessage(status, err)})
}

func errorMessage(status int, err error) string {
	if status == http.StatusRequestTimeout {
		return "request timeout"
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// BindAndValidate binds the JSON body into obj. On failure it writes a 400
// and returns false, so handlers can simply return:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: "bad request"})
		return false
	}

	t := structType(obj)
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[jsonName(t, fe)] = fieldMessage(fe)
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fields,
	})
	return false
}

// tagMessages holds the message prefix for each binding tag; the tag
// parameter, when present, is appended.
var tagMessages = map[string]string{
	"required": "This field is required",
	"gt":       "Must be greater than",
	"gte":      "Must be greater than or equal to",
	"lte":      "Must be less than or equal to",
	"min":      "Must be at least",
	"max":      "Must be at most",
	LettersTag: "Must contain letters only",
}

func fieldMessage(fe validator.FieldError) string {
	prefix, ok := tagMessages[fe.Tag()]
	if !ok {
		if fe.Param() != "" {
			return fe.Tag() + "=" + fe.Param()
		}
		return fe.Tag()
	}
	if fe.Param() == "" {
		return prefix
	}
	msg := prefix + " " + fe.Param()
	if fe.Kind() == reflect.String && (fe.Tag() == "min" || fe.Tag() == "max") {
		msg += " characters"
	}
	return msg
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// jsonName resolves the JSON key of the failing field, falling back to the
// lower-cased Go name.
func jsonName(t reflect.Type, fe validator.FieldError) string {
	if t != nil {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name != "" && name != "-" {
				return name
			}
		}
	}
	return strings.ToLower(fe.Field())
}
