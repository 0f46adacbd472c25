package handlers

import (
	"net/http"
	"strconv"

	"oms-customers/internal/httputil"
	"oms-customers/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditHandler struct {
	repo AuditReader
	log  *logrus.Logger
}

func NewAuditHandler(repo AuditReader, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{repo: repo, log: log}
}

// List handles GET /audit (admin only).
func (h *AuditHandler) List(c *gin.Context) {
	var customerID uint64
	if raw := c.Query("customer_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			httputil.Fail(c, http.StatusBadRequest, msgInvalidCustomerID)
			return
		}
		customerID = id
	}

	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.Fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	logs, err := h.repo.ListAudit(c.Request.Context(), uint(customerID), limit)
	if err != nil {
		h.log.WithError(err).
			WithField("request_id", middleware.RequestIDFrom(c)).
			Error("failed to list audit log")
		httputil.Fail(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}
