package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/fjod/goldshop/internal/domain"
)

// EventPurchaseLogged is the outbox event type written with every purchase log.
const EventPurchaseLogged = "PurchaseLogged"

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository struct {
	db *sql.DB
}

// OutboxEvent is a purchase-log event waiting to be published.
type OutboxEvent struct {
	ID          int
	AggregateId string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

type purchaseLoggedPayload struct {
	LogID       int64     `json:"log_id"`
	PlayerID    string    `json:"player_id"`
	ProductName string    `json:"product_name"`
	Amount      int       `json:"amount"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	log.Println("connected to postgres")
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// ListReviews returns the newest reviews first.
func (r *Repository) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	query := `SELECT id, username, rating, comment, created_at
              FROM reviews
              ORDER BY created_at DESC, id DESC
              LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0, limit)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.Username, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

func (r *Repository) CreateReview(ctx context.Context, draft domain.ReviewDraft) (domain.Review, error) {
	query := `INSERT INTO reviews (username, rating, comment)
              VALUES ($1, $2, $3)
              RETURNING id, created_at`

	rv := domain.Review{
		Username: draft.Username,
		Rating:   draft.Rating,
		Comment:  draft.Comment,
	}
	if err := r.db.QueryRowContext(ctx, query, draft.Username, draft.Rating, draft.Comment).Scan(&rv.ID, &rv.CreatedAt); err != nil {
		return domain.Review{}, fmt.Errorf("failed to insert review: %w", err)
	}
	return rv, nil
}

// ListPurchaseLogs returns the newest purchase log entries first.
func (r *Repository) ListPurchaseLogs(ctx context.Context, limit int) ([]domain.PurchaseLogEntry, error) {
	query := `SELECT id, player_id, product_name, amount, price, created_at
              FROM purchase_logs
              ORDER BY created_at DESC, id DESC
              LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase logs: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.PurchaseLogEntry, 0, limit)
	for rows.Next() {
		var e domain.PurchaseLogEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.ProductName, &e.Amount, &e.Price, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchase logs: %w", err)
	}
	return entries, nil
}

// CreatePurchaseLog stores the entry and its outbox event in one transaction.
func (r *Repository) CreatePurchaseLog(ctx context.Context, record domain.PurchaseRecord) (domain.PurchaseLogEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PurchaseLogEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry := domain.PurchaseLogEntry{
		PlayerID:    record.PlayerID,
		ProductName: record.ProductName,
		Amount:      record.Amount,
		Price:       record.Price,
	}

	insertLog := `INSERT INTO purchase_logs (player_id, product_name, amount, price)
                  VALUES ($1, $2, $3, $4)
                  RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, insertLog, record.PlayerID, record.ProductName, record.Amount, record.Price).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return domain.PurchaseLogEntry{}, fmt.Errorf("failed to insert purchase log: %w", err)
	}

	payload, err := json.Marshal(purchaseLoggedPayload{
		LogID:       entry.ID,
		PlayerID:    entry.PlayerID,
		ProductName: entry.ProductName,
		Amount:      entry.Amount,
		Price:       entry.Price.String(),
		CreatedAt:   entry.CreatedAt,
	})
	if err != nil {
		return domain.PurchaseLogEntry{}, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	insertEvent := `INSERT INTO outbox_events (aggregate_id, event_type, payload)
                    VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertEvent, entry.PlayerID, EventPurchaseLogged, string(payload)); err != nil {
		return domain.PurchaseLogEntry{}, fmt.Errorf("failed to insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.PurchaseLogEntry{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, nil
}

// GetUnprocessedEvents returns the oldest unpublished outbox events.
func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
              FROM outbox_events
              WHERE processed_at IS NULL
              ORDER BY id
              LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.AggregateId, &ev.EventType, &payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		ev.Payload = payload
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int) error {
	query := `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark outbox event %d: %w", id, err)
	}
	return nil
}
