package report

import (
	"time"

	"orderbot/models"
	"orderbot/order"
	"orderbot/quote"
)

// Report is the reconciled summary of one batch run.
type Report struct {
	Weekday   time.Weekday
	Total     int
	Successes []order.Success
	Failures  []Failure
}

type Failure struct {
	QuoteID string
	Record  models.OrderRecord
	Reason  string
}

// SuccessRate is defined as 0 when nothing entered the quote stage.
func (r Report) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(len(r.Successes)) / float64(r.Total) * 100
}

// Merge reconciles both stage summaries. Total is the number of due records
// that entered the quote stage; failures from both stages are kept in order.
func Merge(quotes quote.Summary, orders order.Summary) Report {
	rep := Report{Total: quotes.Total, Successes: orders.Successes}
	for _, f := range quotes.Failures {
		rep.Failures = append(rep.Failures, Failure{Record: f.Record, Reason: f.Reason})
	}
	for _, f := range orders.Failures {
		rep.Failures = append(rep.Failures, Failure{QuoteID: f.QuoteID, Record: f.Record, Reason: f.Reason})
	}
	return rep
}

// AuditRecords flattens placed orders into rows for the append-only sink.
func AuditRecords(successes []order.Success, now time.Time) []models.AuditRecord {
	records := make([]models.AuditRecord, 0, len(successes))
	for _, s := range successes {
		oc := s.Context
		records = append(records, models.AuditRecord{
			Timestamp:           now,
			OrderID:             s.CarrierOrderID,
			QuoteID:             s.QuoteID,
			OrderState:          s.Response.Status.State,
			CreatedAt:           s.Response.Status.CreatedAt,
			ClientID:            oc.Client.ClientID,
			ClientName:          oc.Client.Name,
			ClientPhone:         oc.Client.Phone,
			ClientEmail:         oc.Client.Email,
			RestaurantName:      oc.Restaurant.Name,
			PickupAddressBookID: oc.Restaurant.PickupAddressBookID,
			PickupTime:          oc.Record.PickupTimeUTC,
			PickupOrderCode:     s.PickupCode,
			DeliveryAddress:     oc.Record.DeliveryRawAddress,
			DeliveryLatitude:    oc.Record.DeliveryLatitude,
			DeliveryLongitude:   oc.Record.DeliveryLongitude,
			QuotePrice:          oc.Quote.QuotePrice,
			Currency:            oc.Quote.CurrencyCode,
			Description:         oc.Order.Description,
		})
	}
	return records
}
