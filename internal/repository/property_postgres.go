package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/listingdeck/listingdeck/internal/domain"
)

// propertyRepository implements domain.PropertyRepository for PostgreSQL
type propertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository creates a new PostgreSQL property repository
func NewPropertyRepository(db *sql.DB) domain.PropertyRepository {
	return &propertyRepository{db: db}
}

var propertyColumns = []string{
	"id", "agency_id", "agent_id", "title", "address", "price", "description",
	"build_year", "lot_size", "internal_area", "living_area", "bedrooms", "bathrooms",
	"latitude", "longitude", "images", "features",
}

// GetProperty loads a listing; a listing of another agency is reported as not found
func (r *propertyRepository) GetProperty(ctx context.Context, agencyID, id string) (*domain.Property, error) {
	query, args, err := psql.
		Select(propertyColumns...).
		From("properties").
		Where(sq.Eq{"id": id, "agency_id": agencyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var (
		p                                           domain.Property
		agentID, address, description               sql.NullString
		buildYear, bedrooms, bathrooms              sql.NullInt64
		lotSize, internalArea, livingArea, lat, lng sql.NullFloat64
		price                                       sql.NullFloat64
		images                                      pq.StringArray
		features                                    []byte
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.AgencyID,
		&agentID,
		&p.Title,
		&address,
		&price,
		&description,
		&buildYear,
		&lotSize,
		&internalArea,
		&livingArea,
		&bedrooms,
		&bathrooms,
		&lat,
		&lng,
		&images,
		&features,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ErrNotFound{Entity: "property", ID: id}
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if agentID.Valid {
		p.AgentID = &agentID.String
	}
	p.Address = address.String
	p.Description = description.String
	p.Price = price.Float64
	p.BuildYear = nullInt(buildYear)
	p.Bedrooms = nullInt(bedrooms)
	p.Bathrooms = nullInt(bathrooms)
	p.LotSize = nullFloat(lotSize)
	p.InternalArea = nullFloat(internalArea)
	p.LivingArea = nullFloat(livingArea)
	p.Latitude = nullFloat(lat)
	p.Longitude = nullFloat(lng)

	p.Images = []string(images)
	if p.Images == nil {
		p.Images = []string{}
	}

	p.Features = []domain.PropertyFeature{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("failed to decode features of property %s: %w", id, err)
		}
	}

	return &p, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
