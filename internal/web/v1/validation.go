package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/backoffice/internal/core/domain"
	logicv1 "github.com/duynhne/backoffice/internal/logic/v1"
)

// bindForm reads the declared fields from the posted form. Unknown keys are ignored.
func bindForm(c *gin.Context, fields []logicv1.Field) logicv1.FormValues {
	values := make(logicv1.FormValues, len(fields))
	for _, f := range fields {
		values[f.Name] = c.PostForm(f.Name)
	}
	return values
}

// failureStatus maps a rejected submit or delete to the status the page renders with.
func failureStatus(fieldErrs logicv1.FieldErrors, failure error) int {
	if len(fieldErrs) > 0 {
		return http.StatusUnprocessableEntity
	}
	switch domain.Kind(failure) {
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrValidation:
		return http.StatusUnprocessableEntity
	case domain.ErrNetwork, domain.ErrServer:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// confirmed reports whether the delete prompt was answered yes.
func confirmed(c *gin.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.PostForm("confirm")), "yes")
}
