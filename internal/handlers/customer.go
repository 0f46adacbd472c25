package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"

	"oms-customers/internal/database"
	"oms-customers/internal/httputil"
	"oms-customers/internal/middleware"
	"oms-customers/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidCustomerID = "Invalid customer ID."
	msgCustomerNotFound  = "Customer not found."
	msgPleaseCorrect     = "Please correct the errors and try again."
	msgNoChanges         = "No changes were made to the customer."
	msgUpdateFailed      = "Failed to update customer. Please try again."
	msgUnexpected        = "An unexpected error occurred. Please try again."
	msgDBUnavailable     = "Database connection failed. Please try again later."
)

type CustomerHandler struct {
	updater CustomerUpdater
	reader  CustomerReader
	log     *logrus.Logger
}

func NewCustomerHandler(updater CustomerUpdater, reader CustomerReader, log *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{updater: updater, reader: reader, log: log}
}

// Update handles POST /customers/update. Authentication, method and CSRF
// checks run as middleware ahead of it.
func (h *CustomerHandler) Update(c *gin.Context) {
	var form customerForm
	// the Content-Type picks urlencoded or multipart binding
	if err := c.ShouldBind(&form); err != nil {
		httputil.Fail(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	req := service.UpdateRequest{
		ActorID: middleware.CurrentUserID(c),
		Input:   form.normalize(),
	}

	res, err := h.updater.Update(c.Request.Context(), req)
	switch {
	case errors.Is(err, service.ErrInvalidCustomerID):
		httputil.Fail(c, http.StatusBadRequest, msgInvalidCustomerID)
		return
	case errors.Is(err, service.ErrCustomerNotFound):
		httputil.Fail(c, http.StatusNotFound, msgCustomerNotFound)
		return
	case errors.Is(err, service.ErrUpdateFailed):
		h.logError(c, req, err, "failed to update customer")
		httputil.Fail(c, http.StatusInternalServerError, msgUpdateFailed)
		return
	case errors.Is(err, database.ErrUnavailable):
		h.logError(c, req, err, "database unavailable")
		httputil.Fail(c, http.StatusInternalServerError, msgDBUnavailable)
		return
	case err != nil:
		h.logError(c, req, err, "error updating customer")
		httputil.Fail(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	id := uint(req.Input.ID)
	switch res.Outcome {
	case service.Rejected:
		c.JSON(http.StatusOK, httputil.Response{
			Success: false,
			Message: msgPleaseCorrect,
			Errors:  res.Errors,
		})
	case service.Unchanged:
		data := res.Customer.Data()
		c.JSON(http.StatusOK, httputil.Response{
			Success:    true,
			Message:    msgNoChanges,
			CustomerID: id,
			Data:       &data,
		})
	default:
		data := res.Customer.Data()
		c.JSON(http.StatusOK, httputil.Response{
			Success:    true,
			Message:    fmt.Sprintf(`Customer "%s" has been successfully updated.`, html.EscapeString(res.Customer.Name)),
			CustomerID: id,
			Data:       &data,
		})
	}
}

// Get handles GET /customers/:id for the edit form.
func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httputil.Fail(c, http.StatusBadRequest, msgInvalidCustomerID)
		return
	}

	customer, err := h.reader.GetCustomerWithCity(c.Request.Context(), uint(id))
	if errors.Is(err, database.ErrNotFound) {
		httputil.Fail(c, http.StatusNotFound, msgCustomerNotFound)
		return
	}
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"customer_id": id,
			"request_id":  middleware.RequestIDFrom(c),
		}).Error("failed to load customer")
		msg := msgUnexpected
		if errors.Is(err, database.ErrUnavailable) {
			msg = msgDBUnavailable
		}
		httputil.Fail(c, http.StatusInternalServerError, msg)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"customer": customer,
	})
}

func (h *CustomerHandler) logError(c *gin.Context, req service.UpdateRequest, err error, msg string) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"customer_id": req.Input.ID,
		"user_id":     req.ActorID,
		"request_id":  middleware.RequestIDFrom(c),
	}).Error(msg)
}
