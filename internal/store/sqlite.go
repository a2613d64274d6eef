package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/nnamon/hippo/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Profiles ---

const profileColumns = `user_id, username, first_name, created_at,
       waking_start_hour, waking_start_minute, waking_end_hour, waking_end_minute,
       reminder_interval_minutes, timezone, is_active`

func scanProfile(row interface{ Scan(...any) error }) (*domain.UserProfile, error) {
	var (
		p         domain.UserProfile
		createdAt int64
		activeInt int
	)
	if err := row.Scan(
		&p.UserID, &p.Username, &p.FirstName, &createdAt,
		&p.WakingStartHour, &p.WakingStartMinute, &p.WakingEndHour, &p.WakingEndMinute,
		&p.IntervalMinutes, &p.Timezone, &activeInt,
	); err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.Active = activeInt != 0
	return &p, nil
}

// GetProfile returns a user's profile, or ErrNotFound.
func (r *SQLiteRepo) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM users WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// UpsertProfile inserts or updates a user's settings.
func (r *SQLiteRepo) UpsertProfile(ctx context.Context, p *domain.UserProfile) error {
	if p == nil {
		return errors.New("nil profile")
	}

	created := p.CreatedAt.UTC().Unix()
	if p.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			user_id, username, first_name, created_at,
			waking_start_hour, waking_start_minute, waking_end_hour, waking_end_minute,
			reminder_interval_minutes, timezone, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username                  = excluded.username,
			first_name                = excluded.first_name,
			waking_start_hour         = excluded.waking_start_hour,
			waking_start_minute       = excluded.waking_start_minute,
			waking_end_hour           = excluded.waking_end_hour,
			waking_end_minute         = excluded.waking_end_minute,
			reminder_interval_minutes = excluded.reminder_interval_minutes,
			timezone                  = excluded.timezone,
			is_active                 = excluded.is_active`,
		p.UserID, p.Username, p.FirstName, created,
		p.WakingStartHour, p.WakingStartMinute, p.WakingEndHour, p.WakingEndMinute,
		p.IntervalMinutes, p.Timezone, boolToInt(p.Active),
	)
	return err
}

// SetActive toggles the active flag for a user.
func (r *SQLiteRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE user_id = ?`, boolToInt(active), userID)
	return err
}

// UpdateWakingWindow sets the waking-hours bounds for a user.
func (r *SQLiteRepo) UpdateWakingWindow(ctx context.Context, userID int64, start, end domain.Clock) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET waking_start_hour = ?, waking_start_minute = ?,
		    waking_end_hour = ?, waking_end_minute = ?
		WHERE user_id = ?`,
		start.Hour, start.Minute, end.Hour, end.Minute, userID)
	return err
}

// UpdateInterval sets the reminder interval in minutes.
func (r *SQLiteRepo) UpdateInterval(ctx context.Context, userID int64, minutes int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reminder_interval_minutes = ? WHERE user_id = ?`, minutes, userID)
	return err
}

// UpdateTimezone sets the IANA timezone identifier.
func (r *SQLiteRepo) UpdateTimezone(ctx context.Context, userID int64, tz string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET timezone = ? WHERE user_id = ?`, tz, userID)
	return err
}

// DeleteUser erases a user and, via cascading foreign keys, all of their
// outcome history and outstanding reminders.
func (r *SQLiteRepo) DeleteUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	return err
}

// ListActiveUserIDs returns the ids of all users with the active flag set.
func (r *SQLiteRepo) ListActiveUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM users WHERE is_active = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Outstanding reminders ---

// CreateOutstandingReminder persists a freshly dispatched reminder.
func (r *SQLiteRepo) CreateOutstandingReminder(ctx context.Context, rem *domain.ActiveReminder) error {
	if rem == nil {
		return errors.New("nil reminder")
	}
	created := rem.CreatedAt.UTC().Unix()
	if rem.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO active_reminders (reminder_id, user_id, chat_id, message_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rem.ReminderID, rem.UserID, rem.Handle.ChatID, rem.Handle.MessageID,
		created, rem.ExpiresAt.UTC().Unix(),
	)
	return err
}

func scanReminder(row interface{ Scan(...any) error }) (*domain.ActiveReminder, error) {
	var (
		rem       domain.ActiveReminder
		createdAt int64
		expiresAt int64
	)
	if err := row.Scan(
		&rem.ReminderID, &rem.UserID, &rem.Handle.ChatID, &rem.Handle.MessageID,
		&createdAt, &expiresAt,
	); err != nil {
		return nil, err
	}
	rem.CreatedAt = time.Unix(createdAt, 0).UTC()
	rem.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &rem, nil
}

// GetOutstandingReminders returns every outstanding reminder for a user,
// oldest first. Normally zero or one; the expire sweep tolerates more.
func (r *SQLiteRepo) GetOutstandingReminders(ctx context.Context, userID int64) ([]domain.ActiveReminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT reminder_id, user_id, chat_id, message_id, created_at, expires_at
		FROM active_reminders
		WHERE user_id = ?
		ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ActiveReminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *rem)
	}
	return res, rows.Err()
}

// GetOutstandingReminder returns a single outstanding reminder by id, or
// ErrNotFound (e.g. when a confirmation arrives after the expire sweep).
func (r *SQLiteRepo) GetOutstandingReminder(ctx context.Context, reminderID string) (*domain.ActiveReminder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT reminder_id, user_id, chat_id, message_id, created_at, expires_at
		FROM active_reminders
		WHERE reminder_id = ?`, reminderID)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rem, err
}

// DeleteOutstandingReminder removes an outstanding reminder row.
func (r *SQLiteRepo) DeleteOutstandingReminder(ctx context.Context, reminderID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM active_reminders WHERE reminder_id = ?`, reminderID)
	return err
}

// --- Outcome log ---

// AppendOutcome records a confirmed or missed outcome for a reminder.
func (r *SQLiteRepo) AppendOutcome(ctx context.Context, userID int64, kind domain.OutcomeKind, reminderID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hydration_events (user_id, event_type, reminder_id, created_at)
		VALUES (?, ?, ?, ?)`,
		userID, string(kind), reminderID, time.Now().UTC().Unix())
	return err
}

// RecentOutcomes returns up to limit outcome kinds for a user, newest first.
func (r *SQLiteRepo) RecentOutcomes(ctx context.Context, userID int64, limit int) ([]domain.OutcomeKind, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_type FROM hydration_events
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kinds []domain.OutcomeKind
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		kinds = append(kinds, domain.OutcomeKind(k))
	}
	return kinds, rows.Err()
}

// MostRecentActivity returns the newest timestamp across outstanding
// reminder creation and outcome records, or nil if the user has neither.
func (r *SQLiteRepo) MostRecentActivity(ctx context.Context, userID int64) (*time.Time, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT MAX(last_ts) FROM (
			SELECT MAX(created_at) AS last_ts FROM active_reminders WHERE user_id = ?
			UNION ALL
			SELECT MAX(created_at) AS last_ts FROM hydration_events WHERE user_id = ?
		)`, userID, userID)

	var ts sql.NullInt64
	if err := row.Scan(&ts); err != nil {
		return nil, err
	}
	if !ts.Valid {
		return nil, nil
	}
	t := time.Unix(ts.Int64, 0).UTC()
	return &t, nil
}

// DailyStats counts confirmed and missed outcomes from the last 24 hours.
func (r *SQLiteRepo) DailyStats(ctx context.Context, userID int64) (confirmed, missed int, err error) {
	since := time.Now().UTC().Add(-24 * time.Hour).Unix()
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_type, COUNT(*) FROM hydration_events
		WHERE user_id = ? AND created_at >= ?
		GROUP BY event_type`, userID, since)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return 0, 0, err
		}
		switch domain.OutcomeKind(kind) {
		case domain.OutcomeConfirmed:
			confirmed = count
		case domain.OutcomeMissed:
			missed = count
		}
	}
	return confirmed, missed, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
