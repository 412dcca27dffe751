package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	pkgch "TradeSim/pkg/clickhouse"
	applogger "TradeSim/pkg/logger"
)

const reportsTable = "technical_reports"

// ReportSchema returns the idempotent DDL for the reports table.
func ReportSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    id            String,
    currency_id   LowCardinality(String),
    interval      LowCardinality(String),
    ts            DateTime64(3, 'UTC'),
    overall       LowCardinality(String),
    osc_buy       UInt16,
    osc_sell      UInt16,
    osc_neutral   UInt16,
    ma_decision   LowCardinality(String),
    current_price Float64,
    payload       String
) ENGINE = MergeTree
ORDER BY (currency_id, interval, ts)
TTL toDateTime(ts) + INTERVAL 90 DAY`, database, reportsTable),
	}
}

// CHReportStore implements ReportStore backed by ClickHouse.
// Tallies are kept as columns for ad-hoc queries; the full summary lives in payload.
type CHReportStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.ReportStore = (*CHReportStore)(nil)

func NewCHReportStore(ch *pkgch.Client) *CHReportStore {
	return &CHReportStore{db: ch.DB(), table: ch.Database() + "." + reportsTable}
}

// SetLogger injects a structured logger.
func (s *CHReportStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHReportStore) Save(ctx context.Context, r *models.TechnicalReport) error {
	start := time.Now()
	payload, err := json.Marshal(r.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, currency_id, interval, ts, overall, osc_buy, osc_sell, osc_neutral, ma_decision, current_price, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err = s.db.ExecContext(ctx, q, reportArgs(r, payload)...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_report error",
				applogger.String("table", s.table),
				applogger.String("currency_id", r.CurrencyID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save report: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse save_report",
			applogger.String("currency_id", r.CurrencyID),
			applogger.String("interval", r.Interval),
			applogger.Duration("took_ms", time.Since(start)),
		)
	}
	return nil
}

func reportArgs(r *models.TechnicalReport, payload []byte) []interface{} {
	sum := r.Summary
	return []interface{}{
		r.ID,
		r.CurrencyID,
		r.Interval,
		r.Timestamp.UTC(),
		string(sum.Overall),
		uint16(sum.OscillatorSummary.Buy),
		uint16(sum.OscillatorSummary.Sell),
		uint16(sum.OscillatorSummary.Neutral),
		string(sum.MovingAverageSummary.Decision),
		sum.CurrentPrice,
		string(payload),
	}
}

func (s *CHReportStore) History(ctx context.Context, currencyID string, interval domrepo.Interval, limit int) ([]*models.TechnicalReport, error) {
	const qtpl = `
        SELECT id, currency_id, interval, ts, payload
        FROM %s
        WHERE currency_id = ? AND interval = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), currencyID, string(interval), limit)
	if err != nil {
		return nil, fmt.Errorf("report history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.TechnicalReport, 0, limit)
	for rows.Next() {
		var (
			r       models.TechnicalReport
			payload string
		)
		if err := rows.Scan(&r.ID, &r.CurrencyID, &r.Interval, &r.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &r.Summary); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", r.ID, err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHReportStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
