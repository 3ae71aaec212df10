package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"orderbot/carrier"
	"orderbot/models"
)

// ValidationError is a local, field-level problem. The record is skipped
// before any network call and the batch continues.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Msg)
}

// Validate returns the first violation found, nil when the record is fine.
func Validate(rec models.OrderRecord, now time.Time) error {
	required := []struct {
		field string
		value string
	}{
		{"client_id", rec.ClientID},
		{"client_name", rec.ClientName},
		{"client_phone", rec.ClientPhone},
		{"client_email", rec.ClientEmail},
		{"deliveryRawAddress", rec.DeliveryRawAddress},
		{"pickupAddressBookId", rec.PickupAddressBookID},
		{"pickup_time_utc", rec.PickupTimeUTC},
		{"restaurant_name", rec.RestaurantName},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Msg: "is required"}
		}
	}
	if rec.DeliveryLatitude < -90 || rec.DeliveryLatitude > 90 {
		return &ValidationError{Field: "deliveryLattitude", Msg: "must be within [-90, 90]"}
	}
	if rec.DeliveryLongitude < -180 || rec.DeliveryLongitude > 180 {
		return &ValidationError{Field: "deliveryLongitude", Msg: "must be within [-180, 180]"}
	}
	pickup, err := time.Parse(time.RFC3339, rec.PickupTimeUTC)
	if err != nil {
		return &ValidationError{Field: "pickup_time_utc", Msg: "must be an RFC3339 timestamp with explicit offset"}
	}
	if !pickup.After(now) {
		return &ValidationError{Field: "pickup_time_utc", Msg: "must be in the future"}
	}
	at := strings.LastIndex(rec.ClientEmail, "@")
	if at <= 0 || !strings.Contains(rec.ClientEmail[at+1:], ".") {
		return &ValidationError{Field: "client_email", Msg: "must be a valid email"}
	}
	if len(rec.ClientPhone) < 8 {
		return &ValidationError{Field: "client_phone", Msg: "must be at least 8 characters"}
	}
	// basic UUID length check
	if len(rec.PickupAddressBookID) < 30 {
		return &ValidationError{Field: "pickupAddressBookId", Msg: "must be a valid UUID"}
	}
	return nil
}

// BuildRequest maps a sheet record onto the carrier quote payload.
func BuildRequest(rec models.OrderRecord) carrier.QuoteRequest {
	return carrier.QuoteRequest{
		PickupDetails: carrier.PickupDetails{
			AddressBook: carrier.AddressBookRef{ID: rec.PickupAddressBookID},
			PickupTime:  rec.PickupTimeUTC,
		},
		DeliveryAddress: carrier.DeliveryAddress{
			RawAddress: rec.DeliveryRawAddress,
			Coordinates: carrier.Coordinates{
				Latitude:  rec.DeliveryLatitude,
				Longitude: rec.DeliveryLongitude,
			},
			Details: rec.DeliveryDetails,
		},
	}
}

// Success carries the quote plus the three detail blocks derived from the
// source record. They must reach the order stage byte for byte.
type Success struct {
	Index      int
	QuoteID    string
	Price      float64
	Currency   string
	ExpiresAt  string
	Client     models.ClientDetails
	Restaurant models.RestaurantDetails
	Order      models.OrderDetails
	Record     models.OrderRecord
	Response   carrier.QuoteResponse
}

type Failure struct {
	Index  int
	Record models.OrderRecord
	Reason string
}

type Summary struct {
	Total     int
	Successes []Success
	Failures  []Failure
}

func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(len(s.Successes)) / float64(s.Total) * 100
}

// Quoter is the one carrier call this stage needs.
type Quoter interface {
	CreateQuote(ctx context.Context, req carrier.QuoteRequest) (carrier.QuoteResponse, error)
}

type Stage struct {
	Carrier Quoter
	Logger  *log.Logger
	Rate    float64

	now   func() time.Time
	sleep func(time.Duration)
}

func NewStage(c Quoter, rate float64, logger *log.Logger) *Stage {
	return &Stage{Carrier: c, Logger: logger, Rate: rate, now: time.Now, sleep: time.Sleep}
}

func (s *Stage) delay() time.Duration {
	rate := s.Rate
	if rate < 0.001 {
		rate = 0.001
	}
	return time.Duration(float64(time.Second) / rate)
}

// ProcessBatch walks the due records one by one. Invalid records fail without
// a network call. Fixed-interval pacing: one sleep of 1/rate between calls,
// never a burst.
func (s *Stage) ProcessBatch(ctx context.Context, records []models.OrderRecord) Summary {
	summary := Summary{Total: len(records)}
	s.Logger.Infof("creating quotes for %v orders at %.1f req/sec", len(records), s.Rate)
	for i, rec := range records {
		if i > 0 {
			s.sleep(s.delay())
		}
		if err := Validate(rec, s.now()); err != nil {
			s.Logger.Warnf("order %v (%v) failed validation: %v", i+1, rec.ClientName, err)
			summary.Failures = append(summary.Failures, Failure{Index: i + 1, Record: rec, Reason: err.Error()})
			continue
		}
		resp, err := s.Carrier.CreateQuote(ctx, BuildRequest(rec))
		if err != nil {
			s.Logger.Errorf("quote creation failed for client %v: %v", rec.ClientID, err)
			summary.Failures = append(summary.Failures, Failure{Index: i + 1, Record: rec, Reason: err.Error()})
			continue
		}
		s.Logger.Infof("quote %v created for client %v", resp.QuoteID, rec.ClientID)
		summary.Successes = append(summary.Successes, Success{
			Index:     i + 1,
			QuoteID:   resp.QuoteID,
			Price:     resp.QuotePrice,
			Currency:  resp.CurrencyCode,
			ExpiresAt: resp.ExpiresAt,
			Client: models.ClientDetails{
				ClientID: rec.ClientID,
				Name:     rec.ClientName,
				Phone:    rec.ClientPhone,
				Email:    rec.ClientEmail,
			},
			Restaurant: models.RestaurantDetails{
				Name:                rec.RestaurantName,
				PickupAddressBookID: rec.PickupAddressBookID,
			},
			Order: models.OrderDetails{
				Description:       rec.OrderDescription,
				DeliveryFrequency: rec.DeliveryFrequency,
				PickupCode:        rec.PickupCode,
				City:              rec.City,
				Country:           rec.Country,
				PostalCode:        rec.PostalCode,
			},
			Record:   rec,
			Response: resp,
		})
	}
	s.Logger.Infof("quote stage done: %v/%v successful (%.1f%%)", len(summary.Successes), summary.Total, summary.SuccessRate())
	return summary
}
