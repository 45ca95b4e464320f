package complaint

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"duvidha/internal/app/db"
)

// Repository persists complaints.
type Repository interface {
	Create(ctx context.Context, c Complaint) (Complaint, error)
	GetByID(ctx context.Context, id uuid.UUID) (Complaint, error)
	List(ctx context.Context, filter ListFilter) ([]Complaint, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (Complaint, error)
}

type PostgresRepository struct {
	db db.DBTX
}

func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const complaintColumns = `id, user_id, title, description, category, room_number, status, created_at, updated_at`

const createComplaintQuery = `
INSERT INTO complaints (id, user_id, title, description, category, room_number, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + complaintColumns

func (r *PostgresRepository) Create(ctx context.Context, c Complaint) (Complaint, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.Category == "" {
		c.Category = DefaultCategory
	}

	row := r.db.QueryRow(ctx, createComplaintQuery,
		c.ID, c.UserID, c.Title, c.Description, c.Category, c.RoomNumber, string(c.Status))
	created, err := scanComplaint(row)
	if err != nil {
		return Complaint{}, fmt.Errorf("insert complaint: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Complaint, error) {
	row := r.db.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	c, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Complaint{}, ErrNotFound
		}
		return Complaint{}, fmt.Errorf("select complaint: %w", err)
	}
	return c, nil
}

// List returns complaints newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Complaint, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.UserID != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+complaintColumns+` FROM complaints WHERE user_id = $1 ORDER BY created_at DESC`, *filter.UserID)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+complaintColumns+` FROM complaints ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	out := []Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaints: %w", err)
	}
	return out, nil
}

const updateStatusQuery = `
UPDATE complaints SET status = $1, updated_at = now()
WHERE id = $2
RETURNING ` + complaintColumns

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (Complaint, error) {
	c, err := scanComplaint(r.db.QueryRow(ctx, updateStatusQuery, string(status), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Complaint{}, ErrNotFound
		}
		return Complaint{}, fmt.Errorf("update complaint status: %w", err)
	}
	return c, nil
}

func scanComplaint(row pgx.Row) (Complaint, error) {
	var (
		c      Complaint
		status string
	)
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.RoomNumber,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Complaint{}, err
	}
	c.Status = Status(status)
	return c, nil
}
