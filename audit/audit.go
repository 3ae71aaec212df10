package audit

import (
	"time"

	log "github.com/sirupsen/logrus"

	"orderbot/models"
)

// Sink is an append-only destination for audit records. A failing sink is a
// persistence problem, never a pipeline one: callers log and move on.
type Sink interface {
	Append(rec models.AuditRecord) error
	Close() error
}

// MultiSink fans one record out to every configured sink.
type MultiSink struct {
	Sinks  []Sink
	Logger *log.Logger
}

func (m *MultiSink) Append(rec models.AuditRecord) error {
	for _, s := range m.Sinks {
		if err := s.Append(rec); err != nil {
			m.Logger.Errorf("audit append failed: %v", err)
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	for _, s := range m.Sinks {
		if err := s.Close(); err != nil {
			m.Logger.Errorln(err)
		}
	}
	return nil
}

const timestampFormat = time.DateTime
