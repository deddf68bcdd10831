package eventlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"editionhouse/core/events"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the event log database and migrates its schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("eventlog: unknown driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("eventlog: open: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("eventlog: migrate: %w", err)
	}
	return db, nil
}

// Sink buffers the events it receives and persists them on Flush, so rows
// are written only for operations whose state was committed. Emit cannot
// report failures; encoding errors are logged and counted instead.
type Sink struct {
	db      *gorm.DB
	logger  *slog.Logger
	clock   clockwork.Clock
	pending []*Record
	failed  int
}

var _ events.Emitter = (*Sink)(nil)

// NewSink wraps db. A nil logger uses slog.Default.
func NewSink(db *gorm.DB, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{db: db, logger: logger, clock: clockwork.NewRealClock()}
}

// SetClock replaces the clock used to stamp records.
func (s *Sink) SetClock(clock clockwork.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// Emit implements events.Emitter.
func (s *Sink) Emit(evt events.Event) {
	if s == nil || evt == nil {
		return
	}
	record, err := s.record(evt)
	if err != nil {
		s.failed++
		s.logger.Error("event log encode failed", "type", evt.EventType(), "error", err)
		return
	}
	s.pending = append(s.pending, record)
}

// Pending returns how many events await Flush.
func (s *Sink) Pending() int { return len(s.pending) }

// Flush writes the buffered events in one transaction. On error nothing is
// written and the buffer is kept.
func (s *Sink) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&s.pending).Error
	})
	if err != nil {
		s.logger.Error("event log write failed", "events", len(s.pending), "error", err)
		return fmt.Errorf("eventlog: flush: %w", err)
	}
	s.pending = nil
	return nil
}

// Discard drops the buffered events.
func (s *Sink) Discard() { s.pending = nil }

// Failed returns how many events could not be encoded.
func (s *Sink) Failed() int { return s.failed }

func (s *Sink) record(evt events.Event) (*Record, error) {
	record := &Record{Type: evt.EventType(), Attributes: "{}", EmittedAt: s.clock.Now().UTC()}
	payload, ok := evt.(events.Payload)
	if !ok || payload.Event() == nil {
		return record, nil
	}
	attrs := payload.Event().Attributes
	blob, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	record.Attributes = string(blob)
	record.SettlementID = attrs["settlementId"]
	record.TokenID = attrs["tokenId"]
	return record, nil
}

// Decode returns the attributes of r.
func (r Record) Decode() (map[string]string, error) {
	attrs := map[string]string{}
	if err := json.Unmarshal([]byte(r.Attributes), &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// ByType returns the records of eventType in emission order.
func ByType(db *gorm.DB, eventType string) ([]Record, error) {
	var records []Record
	err := db.Where("type = ?", eventType).Order("id asc").Find(&records).Error
	return records, err
}

// BySettlement returns every record belonging to one settlement.
func BySettlement(db *gorm.DB, settlementID string) ([]Record, error) {
	var records []Record
	err := db.Where("settlement_id = ?", settlementID).Order("id asc").Find(&records).Error
	return records, err
}

// TypeCount is the number of records of one event type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// CountByType summarises the log per event type.
func CountByType(db *gorm.DB) ([]TypeCount, error) {
	var counts []TypeCount
	err := db.Model(&Record{}).Select("type, count(*) as count").Group("type").Order("type asc").Scan(&counts).Error
	return counts, err
}
