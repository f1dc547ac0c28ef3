package procurement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// exportPageSize caps the rows of a list export
const exportPageSize = 10000

var orderExportHeaders = []string{
	"Order Number", "Status", "Supplier", "PO Date", "Expected Delivery",
	"Lines", "Completion %", "Total Amount", "Amount Paid", "Payment Status",
}

var receivingSheetHeaders = []string{
	"Line", "Product", "SKU", "Variant", "Supplier SKU",
	"Ordered", "Received", "Pending", "Completion %", "Unit Price", "Line Total",
}

// ExportReceivingSheet renders the active lines of an order as a receiving worksheet
func (s *PurchaseOrderService) ExportReceivingSheet(ctx context.Context, tenantID, orderID uuid.UUID) (*excelize.File, string, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Receiving"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}

	writeHeaderRow(f, sheet, receivingSheetHeaders)

	items := order.ActiveItems()
	for idx, item := range items {
		row := idx + 2
		values := []interface{}{
			idx + 1,
			item.Product.Name,
			item.Product.SKU,
			item.Product.VariantName,
			item.Product.SupplierSKU,
			item.QuantityOrdered.InexactFloat64(),
			item.QuantityReceived.InexactFloat64(),
			item.QuantityPending().InexactFloat64(),
			item.CompletionPercent(),
			item.UnitPrice.InexactFloat64(),
			item.LineTotal().InexactFloat64(),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	summaryRow := len(items) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), fmt.Sprintf("%s / %s", order.OrderNumber, order.Supplier.Name))
	_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", summaryRow), order.TotalOrdered().InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", summaryRow), order.TotalReceived().InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", summaryRow), order.CompletionPercent())
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("K%d", summaryRow), summaryStyle)

	setColWidths(f, sheet, []float64{6, 28, 14, 14, 14, 10, 10, 10, 12, 12, 12})

	filename := fmt.Sprintf("%s_receiving.xlsx", order.OrderNumber)
	return f, filename, nil
}

// ExportOrders renders the orders matching filter, one row per order plus a summary row
func (s *PurchaseOrderService) ExportOrders(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*excelize.File, string, error) {
	domainFilter := filter.toDomain()
	domainFilter.Page = 1
	domainFilter.PageSize = exportPageSize

	orders, _, err := s.orderRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Purchase Orders"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}
	writeHeaderRow(f, sheet, orderExportHeaders)

	total := decimal.Zero
	paid := decimal.Zero
	for idx := range orders {
		o := &orders[idx]
		expected := ""
		if o.ExpectedDeliveryDate != nil {
			expected = o.ExpectedDeliveryDate.Format("2006-01-02")
		}
		values := []interface{}{
			o.OrderNumber,
			string(o.Status),
			o.Supplier.Name,
			o.PODate.Format("2006-01-02"),
			expected,
			len(o.ActiveItems()),
			o.CompletionPercent(),
			o.TotalAmount.InexactFloat64(),
			o.AmountPaid.InexactFloat64(),
			string(o.PaymentStatus),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, idx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		total = total.Add(o.TotalAmount)
		paid = paid.Add(o.AmountPaid)
	}

	summaryRow := len(orders) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", summaryRow), fmt.Sprintf("%d orders", len(orders)))
	_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", summaryRow), total.InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("I%d", summaryRow), paid.InexactFloat64())
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("J%d", summaryRow), summaryStyle)

	setColWidths(f, sheet, []float64{16, 18, 28, 12, 16, 8, 12, 14, 14, 14})

	filename := fmt.Sprintf("purchase_orders_%s.xlsx", s.now().Format("20060102"))
	return f, filename, nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
}

func setColWidths(f *excelize.File, sheet string, widths []float64) {
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
}
