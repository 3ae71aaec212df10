package order

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"orderbot/carrier"
	"orderbot/models"
	"orderbot/quote"
)

// Context is everything a placed order needs from the quote stage. The three
// detail blocks are the ones packaged at quote time, carried verbatim.
type Context struct {
	Index      int
	QuoteID    string
	Client     models.ClientDetails
	Restaurant models.RestaurantDetails
	Order      models.OrderDetails
	Record     models.OrderRecord
	Quote      carrier.QuoteResponse
}

// ExtractContexts bridges quote successes into order contexts. A success
// without a quote id is skipped with a warning, never patched up.
func ExtractContexts(successes []quote.Success, logger *log.Logger) []Context {
	contexts := make([]Context, 0, len(successes))
	for _, s := range successes {
		if s.QuoteID == "" {
			logger.Warnf("no quoteId in quote success at index %v, skipping", s.Index)
			continue
		}
		contexts = append(contexts, Context{
			Index:      len(contexts),
			QuoteID:    s.QuoteID,
			Client:     s.Client,
			Restaurant: s.Restaurant,
			Order:      s.Order,
			Record:     s.Record,
			Quote:      s.Response,
		})
	}
	return contexts
}

// ContextError means a record reached this stage with an incomplete contact
// block. That record is lost; a placeholder contact is never substituted.
type ContextError struct {
	Field   string
	QuoteID string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("incomplete client context for quote %s: %s is empty", e.QuoteID, e.Field)
}

// BuildRequest builds the parcel payload. The contact block comes exclusively
// from the carried client details.
func BuildRequest(ctx Context, now time.Time) (carrier.OrderRequest, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"name", ctx.Client.Name},
		{"phone", ctx.Client.Phone},
		{"email", ctx.Client.Email},
	}
	for _, f := range fields {
		if f.value == "" {
			return carrier.OrderRequest{}, &ContextError{Field: f.name, QuoteID: ctx.QuoteID}
		}
	}
	description := ctx.Order.Description
	if description == "" {
		description = "Food delivery order"
	}
	return carrier.OrderRequest{
		Contact: carrier.Contact{
			Name:  ctx.Client.Name,
			Phone: ctx.Client.Phone,
			Email: ctx.Client.Email,
		},
		PickupOrderCode: fmt.Sprintf("ORD%d%d", now.Unix(), ctx.Index),
		PackageDetails: carrier.PackageDetails{
			ContentType: "FOOD",
			Description: description,
			Products:    []string{},
		},
	}, nil
}

type Success struct {
	Index          int
	QuoteID        string
	CarrierOrderID string
	PickupCode     string
	Context        Context
	Response       carrier.OrderResponse
}

type Failure struct {
	Index   int
	QuoteID string
	Record  models.OrderRecord
	Reason  string
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

type Orderer interface {
	CreateOrder(ctx context.Context, quoteID string, req carrier.OrderRequest) (carrier.OrderResponse, error)
}

type Stage struct {
	Carrier Orderer
	Logger  *log.Logger
	Rate    float64

	now   func() time.Time
	sleep func(time.Duration)
}

func NewStage(c Orderer, rate float64, logger *log.Logger) *Stage {
	return &Stage{Carrier: c, Logger: logger, Rate: rate, now: time.Now, sleep: time.Sleep}
}

func (s *Stage) delay() time.Duration {
	rate := s.Rate
	if rate < 0.001 {
		rate = 0.001
	}
	return time.Duration(float64(time.Second) / rate)
}

// ProcessBatch places one order per context under the same fixed-interval
// pacing as the quote stage.
func (s *Stage) ProcessBatch(ctx context.Context, contexts []Context) Summary {
	summary := Summary{Total: len(contexts)}
	s.Logger.Infof("placing %v orders at %.1f req/sec", len(contexts), s.Rate)
	for i, oc := range contexts {
		if i > 0 {
			s.sleep(s.delay())
		}
		payload, err := BuildRequest(oc, s.now())
		if err != nil {
			s.Logger.Errorf("order %v/%v: %v", i+1, len(contexts), err)
			summary.Failures = append(summary.Failures, Failure{Index: i + 1, QuoteID: oc.QuoteID, Record: oc.Record, Reason: err.Error()})
			continue
		}
		resp, err := s.Carrier.CreateOrder(ctx, oc.QuoteID, payload)
		if err != nil {
			s.Logger.Errorf("order creation failed for quote %v: %v", oc.QuoteID, err)
			summary.Failures = append(summary.Failures, Failure{Index: i + 1, QuoteID: oc.QuoteID, Record: oc.Record, Reason: err.Error()})
			continue
		}
		orderID := resp.TrackingNumber
		if orderID == "" {
			orderID = resp.OrderCode
		}
		s.Logger.Infof("order %v placed for client %v (pickup code %v)", orderID, oc.Client.ClientID, payload.PickupOrderCode)
		summary.Successes = append(summary.Successes, Success{
			Index:          i + 1,
			QuoteID:        oc.QuoteID,
			CarrierOrderID: orderID,
			PickupCode:     payload.PickupOrderCode,
			Context:        oc,
			Response:       resp,
		})
	}
	s.Logger.Infof("order stage done: %v/%v successful (%.1f%%)", len(summary.Successes), summary.Total, summary.SuccessRate())
	return summary
}
