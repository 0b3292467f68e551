package pkg

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/coachsync/internal/domain"
)

// Response is the standard JSON envelope of the view server.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the envelope for payloads rejected by validation.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 JSON response with the given data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    data,
	})
}

// Error sends a JSON error response. The status follows the *domain.AppError
// code and the message is the one recorded in the store, so the UI and the
// store never disagree. A validation error that wraps validator errors is
// sent with per-field details.
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if domain.IsValidation(err) && errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Code:    http.StatusBadRequest,
			Message: domain.ErrorMessage(err, domain.MsgInvalidData),
			Errors:  fieldErrors(ve, nil),
		})
		return
	}

	status := domain.HTTPStatusCode(err)
	msg := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = domain.ErrorMessage(err, http.StatusText(status))
	}
	c.JSON(status, Response{
		Code:    status,
		Message: msg,
		Data:    nil,
	})
}

// BindJSON decodes the request body into obj. On failure it sends a 400
// response and returns false. Entity validation happens in the hooks, so
// only binding-tag constraints apply here.
//
//	if !pkg.BindJSON(c, &req) { return }
func BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Code:    http.StatusBadRequest,
			Message: domain.MsgInvalidData,
			Errors:  fieldErrors(ve, obj),
		})
		return false
	}
	c.JSON(http.StatusBadRequest, Response{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("%s: %v", domain.MsgInvalidData, err),
		Data:    nil,
	})
	return false
}

// Attachment sends data as a downloadable file.
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// fieldErrors maps each failed field to "tag" or "tag=param". Field names
// follow the json tag of obj when available; the namespace is used otherwise
// so nested entries like meals[0].name stay distinct.
func fieldErrors(ve validator.ValidationErrors, obj any) map[string]string {
	jsonTags := buildJSONTagMap(obj)
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := jsonTags[fe.StructField()]
		if !ok {
			name = fieldPath(fe.StructNamespace())
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[name] = msg
	}
	return out
}

// fieldPath drops the root type from a namespace and lowercases the first
// letter of each segment: "Diet.Meals[0].Name" becomes "meals[0].name".
func fieldPath(ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		rest = ns
	}
	parts := strings.Split(rest, ".")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

func parseJSONTagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
