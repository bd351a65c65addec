// Package dropdownconfig reads precomputed dropdown definitions stored as JSONB.
package dropdownconfig

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	postgres "github.com/heartmarshall/calc-content-backend/internal/adapter/postgres"
	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

// Repo provides read access to dropdown_configs.
type Repo struct {
	q  postgres.Querier
	sb sq.StatementBuilderType
}

// New creates a dropdown config repository.
func New(q postgres.Querier) *Repo {
	return &Repo{
		q:  q,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListActiveByScreen returns active configs for a screen ordered by field name.
// Rows whose JSON cannot be decoded are reported in Rejected.
func (r *Repo) ListActiveByScreen(ctx context.Context, screen string) (domain.DropdownConfigSet, error) {
	sql, args, err := r.sb.
		Select("dropdown_key", "screen_location", "field_name", "dropdown_data", "is_active").
		From("dropdown_configs").
		Where(sq.Eq{"screen_location": screen, "is_active": true}).
		OrderBy("field_name", "dropdown_key").
		ToSql()
	if err != nil {
		return domain.DropdownConfigSet{}, fmt.Errorf("build dropdown config query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.q).Query(ctx, sql, args...)
	if err != nil {
		return domain.DropdownConfigSet{}, postgres.MapError(err, "dropdown_configs", screen)
	}
	defer rows.Close()

	out := domain.DropdownConfigSet{Configs: []domain.DropdownConfig{}}
	for rows.Next() {
		var (
			key  string
			cfg  domain.DropdownConfig
			data []byte
		)
		if err := rows.Scan(&key, &cfg.ScreenLocation, &cfg.FieldName, &data, &cfg.IsActive); err != nil {
			return domain.DropdownConfigSet{}, postgres.MapError(fmt.Errorf("scan dropdown config: %w", err), "dropdown_configs", screen)
		}

		if err := json.Unmarshal(data, &cfg.Data); err != nil {
			out.Rejected = append(out.Rejected, domain.RejectedRow{
				Key:    key,
				Screen: cfg.ScreenLocation,
				Reason: "decode dropdown_data: " + err.Error(),
			})
			continue
		}
		if cfg.FieldName == "" {
			out.Rejected = append(out.Rejected, domain.RejectedRow{
				Key:    key,
				Screen: cfg.ScreenLocation,
				Reason: "field_name is empty",
			})
			continue
		}
		if cfg.Data.Key == "" {
			cfg.Data.Key = key
		}
		out.Configs = append(out.Configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return domain.DropdownConfigSet{}, postgres.MapError(err, "dropdown_configs", screen)
	}

	return out, nil
}
