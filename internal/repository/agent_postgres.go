package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/listingdeck/listingdeck/internal/domain"
)

// agentRepository implements domain.AgentRepository for PostgreSQL
type agentRepository struct {
	db *sql.DB
}

// NewAgentRepository creates a new PostgreSQL agent repository
func NewAgentRepository(db *sql.DB) domain.AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) GetAgent(ctx context.Context, agencyID, id string) (*domain.Agent, error) {
	query, args, err := psql.
		Select("id", "agency_id", "name", "email", "phone", "photo_url").
		From("agents").
		Where(sq.Eq{"id": id, "agency_id": agencyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var (
		agent                  domain.Agent
		email, phone, photoURL sql.NullString
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&agent.ID, &agent.AgencyID, &agent.Name, &email, &phone, &photoURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ErrNotFound{Entity: "agent", ID: id}
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	agent.Email = email.String
	agent.Phone = phone.String
	agent.PhotoURL = photoURL.String
	return &agent, nil
}
