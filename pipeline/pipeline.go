package pipeline

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"orderbot/audit"
	"orderbot/models"
	"orderbot/order"
	"orderbot/quote"
	"orderbot/report"
	"orderbot/schedule"
	"orderbot/store"
)

// Pipeline runs one batch: filter due records, exchange them for quotes,
// place orders for the successful quotes and reconcile the outcome. Strictly
// sequential, one network call in flight at a time.
type Pipeline struct {
	Filter     *schedule.Filter
	QuoteStage *quote.Stage
	OrderStage *order.Stage
	Store      store.Store // nil disables the already-scheduled check
	Sink       audit.Sink  // nil disables audit logging
	Logger     *log.Logger

	now func() time.Time
}

func New(filter *schedule.Filter, quotes *quote.Stage, orders *order.Stage, st store.Store, sink audit.Sink, logger *log.Logger) *Pipeline {
	return &Pipeline{
		Filter:     filter,
		QuoteStage: quotes,
		OrderStage: orders,
		Store:      st,
		Sink:       sink,
		Logger:     logger,
		now:        time.Now,
	}
}

// Run processes all records due today and returns the merged report.
func (p *Pipeline) Run(ctx context.Context, records []models.OrderRecord) report.Report {
	today := p.now()
	p.Logger.Infof("starting daily delivery run for %v (%v)", today.Format(time.DateOnly), today.Weekday())

	due := p.Filter.FilterDue(records, today)
	due = p.skipAlreadyScheduled(due, today)
	if len(due) == 0 {
		p.Logger.Infoln("no orders scheduled for today")
		return report.Report{Weekday: today.Weekday()}
	}

	quotes := p.QuoteStage.ProcessBatch(ctx, due)
	contexts := order.ExtractContexts(quotes.Successes, p.Logger)
	orders := p.OrderStage.ProcessBatch(ctx, contexts)

	rep := report.Merge(quotes, orders)
	rep.Weekday = today.Weekday()
	p.persist(rep, today)

	p.Logger.Infof("run finished: total=%v successful=%v failed=%v rate=%.1f%%",
		rep.Total, len(rep.Successes), len(rep.Failures), rep.SuccessRate())
	return rep
}

// skipAlreadyScheduled drops records that already have a placed order
// recorded for today, so a re-run cannot place duplicates.
func (p *Pipeline) skipAlreadyScheduled(due []models.OrderRecord, today time.Time) []models.OrderRecord {
	if p.Store == nil {
		return due
	}
	kept := due[:0]
	for _, rec := range due {
		exists, err := p.Store.AlreadyScheduled(rec.ClientID, today)
		if err != nil {
			p.Logger.Errorf("already-scheduled lookup failed for client %v: %v", rec.ClientID, err)
			kept = append(kept, rec)
			continue
		}
		if exists {
			p.Logger.Infof("order already exists for client %v today, skipping", rec.ClientID)
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

func (p *Pipeline) persist(rep report.Report, today time.Time) {
	records := report.AuditRecords(rep.Successes, p.now())
	for _, rec := range records {
		if p.Sink != nil {
			if err := p.Sink.Append(rec); err != nil {
				p.Logger.Warnf("could not log order %v: %v", rec.OrderID, err)
			}
		}
		if p.Store != nil {
			if err := p.Store.RecordPlaced(rec, today); err != nil {
				p.Logger.Errorf("could not record placed order %v: %v", rec.OrderID, err)
			}
		}
	}
}
