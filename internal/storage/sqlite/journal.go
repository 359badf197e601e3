package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/krama-desa/iuran/internal/models"
)

// AppendJournal persists a payment journal entry.
func (s *SQLiteStore) AppendJournal(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_journal
		 (id, idempotency_key, billing_id, member_id, amount, method, note, recorded_by, staff_id, outcome, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		nullable(entry.IdempotencyKey),
		entry.BillingID,
		nullable(entry.MemberID),
		entry.Amount.String(),
		nullable(entry.Method),
		nullable(entry.Note),
		entry.RecordedBy,
		nullable(entry.StaffID),
		string(entry.Outcome),
		nullable(entry.Message),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// ListJournal retrieves the latest journal entries, newest first.
func (s *SQLiteStore) ListJournal(ctx context.Context, limit int) ([]*models.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, idempotency_key, billing_id, member_id, amount, method, note, recorded_by, staff_id, outcome, message, created_at
		 FROM payment_journal ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		entry := &models.JournalEntry{}
		var key, memberID, method, note, staffID, message sql.NullString
		var amount, outcome string

		if err := rows.Scan(&entry.ID, &key, &entry.BillingID, &memberID, &amount, &method, &note,
			&entry.RecordedBy, &staffID, &outcome, &message, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		entry.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("journal entry %s has invalid amount %q: %w", entry.ID, amount, err)
		}
		entry.IdempotencyKey = key.String
		entry.MemberID = memberID.String
		entry.Method = method.String
		entry.Note = note.String
		entry.StaffID = staffID.String
		entry.Outcome = models.JournalOutcome(outcome)
		entry.Message = message.String

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal: %w", err)
	}

	return entries, nil
}

// nullable stores empty strings as NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
