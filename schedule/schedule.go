package schedule

import (
	"time"

	log "github.com/sirupsen/logrus"

	"orderbot/models"
)

// Delivery frequency mapping. Weekends are never delivery days.
var (
	frequency3Days = []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	frequency5Days = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
)

// DueWeekdays returns the delivery days for a frequency, false if the
// frequency is not one we know.
func DueWeekdays(frequency int) ([]time.Weekday, bool) {
	switch frequency {
	case 3:
		return frequency3Days, true
	case 5:
		return frequency5Days, true
	default:
		return nil, false
	}
}

type Filter struct {
	Logger *log.Logger
}

func NewFilter(logger *log.Logger) *Filter {
	return &Filter{Logger: logger}
}

// IsDue reports whether the record should be processed today. An unknown
// frequency logs a warning and is never due; it must not abort the batch.
func (f *Filter) IsDue(rec models.OrderRecord, today time.Time) bool {
	wd := today.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	days, ok := DueWeekdays(rec.DeliveryFrequency)
	if !ok {
		f.Logger.Warnf("unknown delivery frequency %v for client %v", rec.DeliveryFrequency, rec.ClientID)
		return false
	}
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

// FilterDue keeps input order and never touches the network.
func (f *Filter) FilterDue(records []models.OrderRecord, today time.Time) []models.OrderRecord {
	due := make([]models.OrderRecord, 0, len(records))
	for _, rec := range records {
		if f.IsDue(rec, today) {
			f.Logger.Infof("client %v (frequency=%v) scheduled for %v", rec.ClientName, rec.DeliveryFrequency, today.Weekday())
			due = append(due, rec)
		} else {
			f.Logger.Debugf("client %v (frequency=%v) not scheduled for %v", rec.ClientName, rec.DeliveryFrequency, today.Weekday())
		}
	}
	return due
}
