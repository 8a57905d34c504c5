package storage

import (
	"context"
	"fmt"
	"sort"
)

// TemplateRepo stores catalog templates together with the hidden set and
// the per-tier order overlay.
type TemplateRepo struct {
	db DBTX
}

func NewTemplateRepo(db DBTX) *TemplateRepo {
	return &TemplateRepo{db: db}
}

// ListAll returns templates grouped by tier, built-ins before customs, each
// group in stored position order.
func (r *TemplateRepo) ListAll(ctx context.Context) ([]Template, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tier, name, base_score, duration, description, builtin
		FROM templates
		ORDER BY tier ASC, builtin DESC, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("template list: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var (
			t       Template
			builtin int
		)
		if err := rows.Scan(&t.Tier, &t.Name, &t.BaseScore, &t.Duration, &t.Description, &builtin); err != nil {
			return nil, fmt.Errorf("template scan: %w", err)
		}
		t.BuiltIn = builtin != 0
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("template rows: %w", err)
	}
	return out, nil
}

// ReplaceAll rewrites every template. Position counts per tier and provenance.
func (r *TemplateRepo) ReplaceAll(ctx context.Context, list []Template) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		return fmt.Errorf("template clear: %w", err)
	}
	pos := map[string]int{}
	for _, t := range list {
		key := fmt.Sprintf("%s/%d", t.Tier, boolToInt(t.BuiltIn))
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO templates (tier, position, name, base_score, duration, description, builtin)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, t.Tier, pos[key], t.Name, t.BaseScore, t.Duration, t.Description, boolToInt(t.BuiltIn))
		if err != nil {
			return fmt.Errorf("template insert %s/%s: %w", t.Tier, t.Name, err)
		}
		pos[key]++
	}
	return nil
}

func (r *TemplateRepo) ListHidden(ctx context.Context) (map[string][]string, error) {
	return r.listNames(ctx, `SELECT tier, name FROM hidden_templates ORDER BY tier ASC, rowid ASC`, "hidden")
}

func (r *TemplateRepo) ReplaceHidden(ctx context.Context, hidden map[string][]string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM hidden_templates`); err != nil {
		return fmt.Errorf("hidden clear: %w", err)
	}
	for _, tier := range sortedKeys(hidden) {
		for _, name := range hidden[tier] {
			if _, err := r.db.ExecContext(ctx, `
				INSERT INTO hidden_templates (tier, name) VALUES (?, ?)
				ON CONFLICT(tier, name) DO NOTHING
			`, tier, name); err != nil {
				return fmt.Errorf("hidden insert %s/%s: %w", tier, name, err)
			}
		}
	}
	return nil
}

func (r *TemplateRepo) ListOrder(ctx context.Context) (map[string][]string, error) {
	return r.listNames(ctx, `SELECT tier, name FROM template_order ORDER BY tier ASC, position ASC`, "order")
}

func (r *TemplateRepo) ReplaceOrder(ctx context.Context, order map[string][]string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM template_order`); err != nil {
		return fmt.Errorf("order clear: %w", err)
	}
	for _, tier := range sortedKeys(order) {
		for i, name := range order[tier] {
			if _, err := r.db.ExecContext(ctx, `
				INSERT INTO template_order (tier, position, name) VALUES (?, ?, ?)
			`, tier, i, name); err != nil {
				return fmt.Errorf("order insert %s/%s: %w", tier, name, err)
			}
		}
	}
	return nil
}

func (r *TemplateRepo) listNames(ctx context.Context, query, what string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s list: %w", what, err)
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var tier, name string
		if err := rows.Scan(&tier, &name); err != nil {
			return nil, fmt.Errorf("%s scan: %w", what, err)
		}
		out[tier] = append(out[tier], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", what, err)
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
