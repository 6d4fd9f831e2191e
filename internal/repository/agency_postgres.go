package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/listingdeck/listingdeck/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// agencyRepository implements domain.AgencyRepository for PostgreSQL
type agencyRepository struct {
	db *sql.DB
}

// NewAgencyRepository creates a new PostgreSQL agency repository
func NewAgencyRepository(db *sql.DB) domain.AgencyRepository {
	return &agencyRepository{db: db}
}

func (r *agencyRepository) GetAgency(ctx context.Context, id string) (*domain.Agency, error) {
	query, args, err := psql.
		Select("id", "name", "logo_url", "email", "phone", "website", "address", "brochure_settings", "updated_at").
		From("agencies").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var (
		agency                                            domain.Agency
		logoURL, email, phone, website, address, settings sql.NullString
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&agency.ID,
		&agency.Name,
		&logoURL,
		&email,
		&phone,
		&website,
		&address,
		&settings,
		&agency.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ErrNotFound{Entity: "agency", ID: id}
		}
		return nil, fmt.Errorf("failed to get agency: %w", err)
	}

	agency.LogoURL = logoURL.String
	agency.Email = email.String
	agency.Phone = phone.String
	agency.Website = website.String
	agency.Address = address.String
	agency.BrochureSettings = settings.String
	return &agency, nil
}

func (r *agencyRepository) UpdateBrochureSettings(ctx context.Context, id string, settings string) error {
	query, args, err := psql.
		Update("agencies").
		Set("brochure_settings", settings).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update brochure settings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "agency", ID: id}
	}
	return nil
}
