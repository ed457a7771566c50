package handler

import (
	"net/http"

	"supplydesk/internal/service"

	"github.com/gin-gonic/gin"
)

// StockAdjustmentHeader reports the outcome of the stock decrement after a status change
const StockAdjustmentHeader = "X-Stock-Adjustment"

type RequestHandler struct {
	requestService  service.RequestService
	approvalService service.ApprovalService
}

func NewRequestHandler(requestService service.RequestService, approvalService service.ApprovalService) *RequestHandler {
	return &RequestHandler{
		requestService:  requestService,
		approvalService: approvalService,
	}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	requests := router.Group("/requests")
	{
		requests.POST("", h.SubmitRequest)
		requests.GET("", requireAdmin, h.ListRequests)
		requests.GET("/:id", requireAdmin, h.GetRequest)
		requests.PATCH("/:id", requireAdmin, h.UpdateStatus)
	}
}

// SubmitRequest records an employee's supply request
// @Summary      Submit supply request
// @Description  Creates one pending request per line item. All rows are stored or none are.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SubmitRequestInput  true  "Request payload"
// @Success      201      {array}   model.Request
// @Failure      400      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /api/requests [post]
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	var in service.SubmitRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	requests, err := h.requestService.SubmitRequest(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to submit request")
		return
	}
	c.JSON(http.StatusCreated, requests)
}

// ListRequests returns requests newest first
// @Summary      List requests
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "pending, approved or rejected"
// @Success      200     {array}   model.Request
// @Failure      400     {object}  response.ErrorBody
// @Failure      401     {object}  response.ErrorBody
// @Failure      500     {object}  response.ErrorBody
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	requests, err := h.requestService.ListRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err, "Failed to fetch requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetRequest returns a single request
// @Summary      Get request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  model.Request
// @Failure      401  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch request")
		return
	}
	c.JSON(http.StatusOK, req)
}

// UpdateStatus approves or rejects a pending request
// @Summary      Decide request
// @Description  Approving decrements the stock of the first item whose name contains the request's item name. The outcome is reported in the X-Stock-Adjustment header.
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Request ID"
// @Param        payload  body      service.UpdateStatusInput  true  "New status"
// @Success      200      {object}  model.Request
// @Header       200      {string}  X-Stock-Adjustment  "applied, no_match, failed or not_applicable"
// @Failure      400      {object}  response.ErrorBody
// @Failure      404      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /api/requests/{id} [patch]
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var in service.UpdateStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	req, adj, err := h.approvalService.SetRequestStatus(c.Request.Context(), actor(c), c.Param("id"), in.Status)
	if err != nil {
		respondError(c, err, "Failed to update request")
		return
	}

	c.Header(StockAdjustmentHeader, string(adj.Outcome))
	c.JSON(http.StatusOK, req)
}
