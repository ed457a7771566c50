package handler

import (
	"net/http"

	"supplydesk/internal/service"
	"supplydesk/pkg/pagination"
	"supplydesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	items := router.Group("/items")
	{
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItem)
		items.POST("", requireAdmin, h.CreateItem)
		items.PUT("/:id", requireAdmin, h.UpdateItem)
		items.DELETE("/:id", requireAdmin, h.DeleteItem)
		items.GET("/:id/movements", requireAdmin, h.ListMovements)
	}
}

// ListItems returns the inventory newest first
// @Summary      List items
// @Description  Lists inventory items, newest first, optionally filtered by name or category
// @Tags         items
// @Produce      json
// @Param        search  query     string  false  "Name or category fragment"
// @Success      200     {array}   model.Item
// @Failure      500     {object}  response.ErrorBody
// @Router       /api/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	items, err := h.inventoryService.ListItems(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err, "Failed to fetch items")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem returns a single item
// @Summary      Get item
// @Tags         items
// @Produce      json
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  model.Item
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/items/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.inventoryService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem adds an item to the inventory
// @Summary      Create item
// @Description  Creates an item; quantity becomes the initial stock and unit defaults to pcs
// @Tags         items
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ItemInput  true  "Item payload"
// @Success      201      {object}  model.Item
// @Failure      400      {object}  response.ErrorBody
// @Failure      401      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /api/items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var in service.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), actor(c), in)
	if err != nil {
		respondError(c, err, "Failed to create item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem replaces an item's fields
// @Summary      Update item
// @Tags         items
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Item ID"
// @Param        payload  body      service.ItemInput  true  "Item payload"
// @Success      200      {object}  model.Item
// @Failure      400      {object}  response.ErrorBody
// @Failure      404      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /api/items/{id} [put]
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var in service.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.inventoryService.UpdateItem(c.Request.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item
// @Summary      Delete item
// @Tags         items
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/items/{id} [delete]
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	item, err := h.inventoryService.DeleteItem(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete item")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Item deleted successfully",
		"item":    item,
	})
}

// ListMovements returns the stock history of an item
// @Summary      List stock movements
// @Tags         items
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Item ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Page{data=[]model.StockMovement}
// @Failure      404    {object}  response.ErrorBody
// @Failure      500    {object}  response.ErrorBody
// @Router       /api/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	p := pagination.Parse(c)

	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err, "Failed to fetch stock movements")
		return
	}
	c.JSON(http.StatusOK, response.Paginated(movements, total, p))
}
