package handler

import (
	"net/http"

	"supplydesk/internal/service"
	"supplydesk/pkg/pagination"
	"supplydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	group := router.Group("/audit-logs")
	group.Use(requireAdmin)
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs returns the audit trail newest first
// @Summary      Get audit logs
// @Description  Paginated history of item and request changes
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Page{data=[]service.AuditLogResponse}
// @Failure      401    {object}  response.ErrorBody
// @Failure      500    {object}  response.ErrorBody
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, "Failed to retrieve audit logs")
		return
	}

	c.JSON(http.StatusOK, response.Paginated(logs, total, p))
}
