package sharelinks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/dbx"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
)

const linkColumns = `id, token, owner_id, title, description, expires_at, max_uses, used_count, is_active, created_at, updated_at`

// PostgresRepository needs the *sql.DB itself because Consume runs in its
// own transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, link *models.ShareLink) error {
	query :=
		`INSERT INTO share_links (` + linkColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var maxUses sql.NullInt64
	if link.MaxUses != nil {
		maxUses = sql.NullInt64{Int64: int64(*link.MaxUses), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		link.ID, link.Token, link.OwnerID, link.Title, link.Description, link.ExpiresAt,
		maxUses, link.UsedCount, link.IsActive, link.CreatedAt, link.UpdatedAt)
	if err != nil {
		if constraint, ok := dbx.IsUniqueViolation(err); ok {
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, constraint)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareLink, error) {
	query :=
		`SELECT ` + linkColumns + ` FROM share_links
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.ShareLink{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	query := `SELECT ` + linkColumns + ` FROM share_links WHERE token = $1`
	return getOne(ctx, r.db, query, token)
}

func (r *PostgresRepository) Consume(ctx context.Context, token string, entry models.AccessLogEntry) (*models.ShareLink, error) {
	var link *models.ShareLink

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		l, err := getOne(ctx, tx, `SELECT `+linkColumns+` FROM share_links WHERE token = $1 FOR UPDATE`, token)
		if err != nil {
			return err
		}

		if err := l.CheckConsumable(entry.AccessedAt); err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE share_links SET used_count = used_count + 1 WHERE id = $1 RETURNING used_count`,
			l.ID).Scan(&l.UsedCount)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO share_link_accesses (share_link_id, ip, user_agent, accessed_at) VALUES ($1, $2, $3, $4)`,
			l.ID, entry.IP, entry.UserAgent, entry.AccessedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		link = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *PostgresRepository) Toggle(ctx context.Context, ownerID, id string, at time.Time) (*models.ShareLink, error) {
	query :=
		`UPDATE share_links SET is_active = NOT is_active, updated_at = $3
		 WHERE id = $1 AND owner_id = $2
		 RETURNING ` + linkColumns
	return getOne(ctx, r.db, query, id, ownerID, at)
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AccessLog(ctx context.Context, ownerID, id string) ([]models.AccessLogEntry, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM share_links WHERE id = $1 AND owner_id = $2)`,
		id, ownerID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return nil, common.ErrorNotFound
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ip, user_agent, accessed_at FROM share_link_accesses
		 WHERE share_link_id = $1
		 ORDER BY accessed_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.AccessLogEntry{}
	for rows.Next() {
		var e models.AccessLogEntry
		if err := rows.Scan(&e.IP, &e.UserAgent, &e.AccessedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func getOne(ctx context.Context, db dbx.DBTX, query string, args ...any) (*models.ShareLink, error) {
	l, err := scanLink(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (*models.ShareLink, error) {
	var (
		l       models.ShareLink
		maxUses sql.NullInt64
	)
	err := row.Scan(&l.ID, &l.Token, &l.OwnerID, &l.Title, &l.Description, &l.ExpiresAt,
		&maxUses, &l.UsedCount, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if maxUses.Valid {
		v := int(maxUses.Int64)
		l.MaxUses = &v
	}
	return &l, nil
}
