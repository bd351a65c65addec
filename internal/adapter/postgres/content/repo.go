// Package content reads localized content rows for dropdown assembly.
package content

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	postgres "github.com/heartmarshall/calc-content-backend/internal/adapter/postgres"
	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

// Repo provides read access to content_items joined with content_translations.
type Repo struct {
	q  postgres.Querier
	sb sq.StatementBuilderType
}

// New creates a content repository. q is usually *pgxpool.Pool.
func New(q postgres.Querier) *Repo {
	return &Repo{
		q:  q,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListDropdownRows returns active items with approved translations, ordered by
// content key. Rows that fail validation are returned in Rejected, not as errors.
func (r *Repo) ListDropdownRows(ctx context.Context, in domain.DropdownRowsFilter) (domain.ContentRowSet, error) {
	entityKey := in.Screen + "/" + in.Language

	types := make([]string, len(in.Types))
	for i, t := range in.Types {
		types[i] = t.String()
	}

	query := r.sb.
		Select(
			"ci.id", "ci.content_key", "ci.screen_location", "ci.component_type", "ci.is_active",
			"ct.id", "ct.language_code", "ct.content_value", "ct.status",
		).
		From("content_items ci").
		Join("content_translations ct ON ct.content_item_id = ci.id").
		Where(sq.Eq{
			"ci.screen_location": in.Screen,
			"ct.language_code":   in.Language,
			"ci.is_active":       true,
			"ct.status":          domain.TranslationStatusApproved.String(),
		}).
		OrderBy("ci.content_key", "ci.id")
	if len(types) > 0 {
		query = query.Where(sq.Eq{"ci.component_type": types})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return domain.ContentRowSet{}, fmt.Errorf("build content query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.q).Query(ctx, sql, args...)
	if err != nil {
		return domain.ContentRowSet{}, postgres.MapError(err, "content_items", entityKey)
	}
	defer rows.Close()

	out := domain.ContentRowSet{Rows: []domain.ContentRow{}}
	for rows.Next() {
		var (
			item          domain.ContentItem
			tr            domain.ContentTranslation
			componentType string
			status        string
		)
		if err := rows.Scan(
			&item.ID, &item.ContentKey, &item.ScreenLocation, &componentType, &item.IsActive,
			&tr.ID, &tr.LanguageCode, &tr.ContentValue, &status,
		); err != nil {
			return domain.ContentRowSet{}, postgres.MapError(fmt.Errorf("scan content row: %w", err), "content_items", entityKey)
		}
		item.ComponentType = domain.ComponentType(componentType)
		tr.ContentItemID = item.ID
		tr.Status = domain.TranslationStatus(status)

		row, err := domain.NewContentRow(item, tr)
		if err != nil {
			out.Rejected = append(out.Rejected, domain.RejectedRow{
				Key:    item.ContentKey,
				Screen: item.ScreenLocation,
				Reason: err.Error(),
			})
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.ContentRowSet{}, postgres.MapError(err, "content_items", entityKey)
	}

	return out, nil
}
