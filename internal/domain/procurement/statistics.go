package procurement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statistics is a rollup over a tenant's purchase orders. It is never persisted.
type Statistics struct {
	TotalPOs               int             `json:"total_pos"`
	DraftCount             int             `json:"draft_count"`
	PendingCount           int             `json:"pending_count"`
	ApprovedCount          int             `json:"approved_count"`
	PartiallyReceivedCount int             `json:"partially_received_count"`
	ReceivedCount          int             `json:"received_count"`
	CancelledCount         int             `json:"cancelled_count"`
	ClosedCount            int             `json:"closed_count"`
	TotalValue             decimal.Decimal `json:"total_value"`
	TotalUnpaid            decimal.Decimal `json:"total_unpaid"`
	OverdueCount           int             `json:"overdue_count"`
	ExpectedThisWeek       int             `json:"expected_this_week"`
}

// CountFor returns the count for a single status
func (s Statistics) CountFor(status Status) int {
	switch status {
	case StatusDraft:
		return s.DraftCount
	case StatusPending:
		return s.PendingCount
	case StatusApproved:
		return s.ApprovedCount
	case StatusPartiallyReceived:
		return s.PartiallyReceivedCount
	case StatusReceived:
		return s.ReceivedCount
	case StatusCancelled:
		return s.CancelledCount
	case StatusClosed:
		return s.ClosedCount
	}
	return 0
}

// expectsDelivery reports whether an order still waits for goods.
// Received, cancelled and closed orders never count as overdue or due.
func expectsDelivery(s Status) bool {
	return s != StatusReceived && s != StatusCancelled && s != StatusClosed
}

// ComputeStatistics rolls up the given orders as of today. Dates are compared by
// calendar day in today's location. Soft-deleted orders are skipped.
func ComputeStatistics(orders []PurchaseOrder, today time.Time) Statistics {
	stats := Statistics{
		TotalValue:  decimal.Zero,
		TotalUnpaid: decimal.Zero,
	}

	day := startOfDay(today, today.Location())
	weekEnd := day.AddDate(0, 0, 7)

	for i := range orders {
		o := &orders[i]
		if o.IsDeleted() {
			continue
		}

		stats.TotalPOs++
		stats.countStatus(o.Status)
		stats.TotalValue = stats.TotalValue.Add(o.TotalAmount)
		stats.TotalUnpaid = stats.TotalUnpaid.Add(o.Outstanding())

		if o.ExpectedDeliveryDate == nil || !expectsDelivery(o.Status) {
			continue
		}
		expected := startOfDay(*o.ExpectedDeliveryDate, today.Location())
		if expected.Before(day) {
			stats.OverdueCount++
		} else if !expected.After(weekEnd) {
			stats.ExpectedThisWeek++
		}
	}

	return stats
}

func (s *Statistics) countStatus(status Status) {
	switch status {
	case StatusDraft:
		s.DraftCount++
	case StatusPending:
		s.PendingCount++
	case StatusApproved:
		s.ApprovedCount++
	case StatusPartiallyReceived:
		s.PartiallyReceivedCount++
	case StatusReceived:
		s.ReceivedCount++
	case StatusCancelled:
		s.CancelledCount++
	case StatusClosed:
		s.ClosedCount++
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
