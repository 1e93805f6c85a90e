package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr answers with the status and code carried by err. Session server
// failures become 502, anything unclassified a 500.
func RespondErr(c *gin.Context, err error) {
	var oe *shiftapi.OperationError
	if errors.As(err, &oe) && apierrOf(err) == nil {
		code := "upstream_" + string(oe.Code)
		if shiftapi.IsNotFound(err) {
			RespondError(c, http.StatusNotFound, code, err)
			return
		}
		RespondError(c, http.StatusBadGateway, code, err)
		return
	}
	ae := apierr.As(err)
	RespondError(c, ae.Status, ae.Code, err)
}

func apierrOf(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
