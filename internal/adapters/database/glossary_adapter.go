package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dentara/backend/pkg/errors"
	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var glossaryColumns = []interface{}{
	"id", "term", "definition", "category", "difficulty", "pronunciation",
	"also_known_as", "related_terms", "example", "created_at", "updated_at",
}

// GlossaryAdapter implements the GlossaryRepository interface
type GlossaryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewGlossaryAdapter creates a new glossary adapter
func NewGlossaryAdapter(client *postgres.Client) repositories.GlossaryRepository {
	return &GlossaryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// List returns every glossary term ordered alphabetically.
func (a *GlossaryAdapter) List(ctx context.Context) ([]*entities.GlossaryTerm, error) {
	query, args, err := a.db.Select(glossaryColumns...).
		From("glossary_terms").
		Order(goqu.I("term").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build glossary query", err)
	}

	return a.queryTerms(ctx, query, args)
}

// GetByIDs retrieves glossary terms by their IDs
func (a *GlossaryAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.GlossaryTerm, error) {
	if len(ids) == 0 {
		return []*entities.GlossaryTerm{}, nil
	}

	query, args, err := a.db.Select(glossaryColumns...).
		From("glossary_terms").
		Where(goqu.Ex{"id": ids}).
		Order(goqu.I("term").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build glossary query", err)
	}

	return a.queryTerms(ctx, query, args)
}

// ListMissingMetadata returns terms with at least one empty metadata column.
func (a *GlossaryAdapter) ListMissingMetadata(ctx context.Context) ([]*entities.GlossaryTerm, error) {
	query, args, err := a.db.Select(glossaryColumns...).
		From("glossary_terms").
		Where(goqu.Or(
			goqu.C("category").IsNull(),
			goqu.C("difficulty").IsNull(),
			goqu.C("pronunciation").IsNull(),
			goqu.C("also_known_as").IsNull(),
			goqu.C("related_terms").IsNull(),
			goqu.C("example").IsNull(),
		)).
		Order(goqu.I("term").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build glossary query", err)
	}

	return a.queryTerms(ctx, query, args)
}

// AllTermNames returns every term name ordered alphabetically.
func (a *GlossaryAdapter) AllTermNames(ctx context.Context) ([]string, error) {
	query, args, err := a.db.Select("term").
		From("glossary_terms").
		Order(goqu.I("term").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build term names query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list term names", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan term name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read term names", err)
	}

	return names, nil
}

// LogInteraction appends one row to the glossary interaction log.
func (a *GlossaryAdapter) LogInteraction(ctx context.Context, interaction *entities.GlossaryInteraction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}

	record := goqu.Record{
		"id":               interaction.ID,
		"term_id":          interaction.TermID,
		"interaction_type": interaction.InteractionType,
		"created_at":       interaction.CreatedAt,
	}

	query, args, err := a.db.Insert("glossary_interactions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build interaction insert", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to log glossary interaction", err)
	}

	return nil
}

func (a *GlossaryAdapter) queryTerms(ctx context.Context, query string, args []interface{}) ([]*entities.GlossaryTerm, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query glossary terms", err)
	}
	defer rows.Close()

	var terms []*entities.GlossaryTerm
	for rows.Next() {
		term := &entities.GlossaryTerm{}
		var category, difficulty, pronunciation, example sql.NullString

		err := rows.Scan(
			&term.ID,
			&term.Term,
			&term.Definition,
			&category,
			&difficulty,
			&pronunciation,
			pq.Array(&term.AlsoKnownAs),
			pq.Array(&term.RelatedTerms),
			&example,
			&term.CreatedAt,
			&term.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan glossary term", err)
		}

		term.Category = category.String
		term.Difficulty = difficulty.String
		term.Pronunciation = pronunciation.String
		term.Example = example.String

		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read glossary terms", err)
	}

	return terms, nil
}
