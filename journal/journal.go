package journal

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/GreatPyreneseDad/RoseGlassLE/pattern"
)

// #region log-alert
// LogAlert writes an intervention entry to the alert_log table.
func LogAlert(db *sql.DB, entry AlertEntry) error {
	if entry.RaisedAt.IsZero() {
		entry.RaisedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO alert_log (alert_id, session_id, raised_at, reason, urgency, confidence, window_seconds, predicted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AlertID,
		entry.SessionID,
		entry.RaisedAt.Format(time.RFC3339Nano),
		entry.Reason,
		entry.Urgency,
		entry.Confidence,
		entry.WindowSeconds,
		encodeVector(entry.Predicted),
	)
	if err != nil {
		return fmt.Errorf("log alert: %w", err)
	}
	return nil
}

// #endregion log-alert

// #region log-consensus
// LogConsensus writes a consensus analysis entry to the consensus_log table.
func LogConsensus(db *sql.DB, entry ConsensusEntry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO consensus_log (report_id, session_id, recorded_at, readings, coefficient, level, most_variable, deviation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ReportID,
		entry.SessionID,
		entry.RecordedAt.Format(time.RFC3339Nano),
		entry.Readings,
		entry.Coefficient,
		entry.Level,
		entry.MostVariable,
		entry.Deviation,
	)
	if err != nil {
		return fmt.Errorf("log consensus: %w", err)
	}
	return nil
}

// #endregion log-consensus

// #region list-alerts
// ListAlerts returns a session's alerts in the order they were raised.
func ListAlerts(db *sql.DB, sessionID string) ([]AlertEntry, error) {
	rows, err := db.Query(
		`SELECT alert_id, session_id, raised_at, reason, urgency, confidence, window_seconds, predicted
		 FROM alert_log WHERE session_id = ? ORDER BY raised_at ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var entries []AlertEntry
	for rows.Next() {
		var entry AlertEntry
		var raisedStr string
		var vecBlob []byte
		if err := rows.Scan(
			&entry.AlertID, &entry.SessionID, &raisedStr, &entry.Reason,
			&entry.Urgency, &entry.Confidence, &entry.WindowSeconds, &vecBlob,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.RaisedAt, _ = time.Parse(time.RFC3339Nano, raisedStr)
		entry.Predicted = decodeVector(vecBlob)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// #endregion list-alerts

// #region vector-encoding
func encodeVector(v pattern.Vector) []byte {
	buf := make([]byte, pattern.NumDimensions*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) pattern.Vector {
	var v pattern.Vector
	for i := range v {
		if i*8+8 <= len(b) {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		}
	}
	return v
}

// #endregion vector-encoding
