package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	procurementapp "github.com/stockroom/backend/internal/application/procurement"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *procurementapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *procurementapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService: orderService,
	}
}

// Create godoc
// @ID           createPurchaseOrder
// @Summary      Create a purchase order
// @Description  Create a draft purchase order. Supplier and product fields are snapshotted from the catalog.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body procurementapp.CreatePurchaseOrderRequest true "Purchase order creation request"
// @Success      201 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req procurementapp.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getPurchaseOrderById
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Description  Paginated list with status, supplier, search and date filters
// @Tags         purchase-orders
// @Produce      json
// @Param        search query string false "Search order number or supplier name"
// @Param        status query []string false "Statuses" collectionFormat(multi)
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        from_date query string false "PO date from (YYYY-MM-DD)"
// @Param        to_date query string false "PO date to (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, po_date, order_number, total_amount, expected_delivery_date, status)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter procurementapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.orderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AddLines godoc
// @ID           addPurchaseOrderLines
// @Summary      Add lines to a purchase order
// @Description  Only draft and pending orders accept new lines
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body procurementapp.AddLinesRequest true "Lines to add"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lines [post]
func (h *PurchaseOrderHandler) AddLines(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	var req procurementapp.AddLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orderService.AddLines(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateLine godoc
// @ID           updatePurchaseOrderLine
// @Summary      Update a purchase order line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Line ID" format(uuid)
// @Param        request body procurementapp.UpdateLineRequest true "Fields to change"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-order-lines/{id} [put]
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "id", "line")
	if !ok {
		return
	}

	var req procurementapp.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orderService.UpdateLine(c.Request.Context(), tenantID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// DeleteLine godoc
// @ID           deletePurchaseOrderLine
// @Summary      Delete a purchase order line
// @Description  Soft-deletes a line that has nothing received
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-order-lines/{id} [delete]
func (h *PurchaseOrderHandler) DeleteLine(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "id", "line")
	if !ok {
		return
	}

	order, err := h.orderService.DeleteLine(c.Request.Context(), tenantID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateHeader godoc
// @ID           updatePurchaseOrder
// @Summary      Update purchase order header fields
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body procurementapp.UpdateHeaderRequest true "Fields to change"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) UpdateHeader(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	var req procurementapp.UpdateHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orderService.UpdateHeader(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Submit godoc
// @ID           submitPurchaseOrder
// @Summary      Submit a draft for approval
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/submit [post]
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.transition(c, h.orderService.Submit)
}

// Approve godoc
// @ID           approvePurchaseOrder
// @Summary      Approve a pending purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	h.transition(c, h.orderService.Approve)
}

// Reject godoc
// @ID           rejectPurchaseOrder
// @Summary      Reject a pending purchase order
// @Description  Sends the order back to draft with a reason
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body procurementapp.RejectRequest true "Rejection reason"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/reject [post]
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	var req procurementapp.RejectRequest
	h.transitionWithBody(c, &req, func(c *gin.Context, tenantID, orderID, actorID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.orderService.Reject(c.Request.Context(), tenantID, orderID, actorID, req)
	})
}

// Cancel godoc
// @ID           cancelPurchaseOrder
// @Summary      Cancel a purchase order
// @Description  Orders that are fully received, closed or already cancelled cannot be cancelled
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body procurementapp.CancelRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	var req procurementapp.CancelRequest
	h.transitionWithBody(c, &req, func(c *gin.Context, tenantID, orderID, actorID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.orderService.Cancel(c.Request.Context(), tenantID, orderID, actorID, req)
	})
}

// Close godoc
// @ID           closePurchaseOrder
// @Summary      Close a received purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Success      200 {object} APIResponse[procurementapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/close [post]
func (h *PurchaseOrderHandler) Close(c *gin.Context) {
	h.transition(c, h.orderService.Close)
}

// Receive godoc
// @ID           receivePurchaseOrder
// @Summary      Receive goods
// @Description  Applies a receipt batch atomically. Any line over its ordered quantity fails the whole batch.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body procurementapp.ReceiveRequest true "Receipt batch"
// @Success      200 {object} APIResponse[procurementapp.ReceiveResultResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	var req procurementapp.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.orderService.Receive(c.Request.Context(), tenantID, orderID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deletePurchaseOrder
// @Summary      Delete a purchase order
// @Description  Soft-deletes a draft or pending order
// @Tags         purchase-orders
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), tenantID, orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// GetStatistics godoc
// @ID           getPurchaseOrderStatistics
// @Summary      Purchase order statistics
// @Description  Counts per status, open value, unpaid total, overdue and expected this week
// @Tags         purchase-orders
// @Produce      json
// @Success      200 {object} APIResponse[procurement.Statistics]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/statistics [get]
func (h *PurchaseOrderHandler) GetStatistics(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	stats, err := h.orderService.GetStatistics(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// ExportOrders godoc
// @ID           exportPurchaseOrders
// @Summary      Export purchase orders
// @Description  Spreadsheet of the orders matching the list filters, one row per order
// @Tags         purchase-orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        search query string false "Search order number or supplier name"
// @Param        status query []string false "Statuses" collectionFormat(multi)
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        from_date query string false "PO date from (YYYY-MM-DD)"
// @Param        to_date query string false "PO date to (YYYY-MM-DD)"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/export [get]
func (h *PurchaseOrderHandler) ExportOrders(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter procurementapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	f, filename, err := h.orderService.ExportOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.writeWorkbook(c, f, filename)
}

// ExportReceivingSheet godoc
// @ID           exportPurchaseOrderReceivingSheet
// @Summary      Export a receiving sheet
// @Description  Spreadsheet with ordered, received and pending quantities per line
// @Tags         purchase-orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/export [get]
func (h *PurchaseOrderHandler) ExportReceivingSheet(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	f, filename, err := h.orderService.ExportReceivingSheet(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.writeWorkbook(c, f, filename)
}

func (h *PurchaseOrderHandler) writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	defer func() {
		if err := f.Close(); err != nil {
			logger.L(c.Request.Context()).Warn("failed to close workbook", zap.Error(err))
		}
	}()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

type transitionFunc func(ctx context.Context, tenantID, orderID, actorID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)

// transition runs a body-less workflow action
func (h *PurchaseOrderHandler) transition(c *gin.Context, fn transitionFunc) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), tenantID, orderID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// transitionWithBody binds req before running a workflow action
func (h *PurchaseOrderHandler) transitionWithBody(
	c *gin.Context,
	req any,
	fn func(c *gin.Context, tenantID, orderID, actorID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error),
) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathID(c, "id", "order")
	if !ok {
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := fn(c, tenantID, orderID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}
