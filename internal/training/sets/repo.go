package sets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/strengthlab/liftstats/internal/telemetry/tracing"
	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrSetNotFound = errors.New("logged set not found")
	// ErrSetExists is returned when the dedup index rejects an insert,
	// usually a retried submission from the mobile app.
	ErrSetExists = errors.New("logged set already exists")
)

type SetParams struct {
	Lift               training.Lift
	From               *time.Time
	To                 *time.Time
	OnlyProd           bool
	ExcludeTestingData bool
}

type ListParams struct {
	SetParams
	Page int
	Size int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, set training.LoggedSet) (_ *training.LoggedSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	metadataJson, err := json.Marshal(set.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO logged_set
				(lift, weight, reps, rpe, warmup, metadata, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		set.Lift, set.Weight, set.Reps, set.RPE, set.Warmup, metadataJson, set.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSetExists
		}
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSetExists
		}
		return nil, err
	}

	if !rows.Next() {
		// pgx can defer the insert error until after the rows are drained
		if err := rows.Err(); err != nil {
			if pkg.IsUniqueViolationError(err) {
				return nil, ErrSetExists
			}
			return nil, err
		}
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("set.id", id))

	set.ID = id
	return &set, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *training.LoggedSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, lift, weight, reps, rpe, warmup, metadata, created_at
			FROM logged_set WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sets, err := r.rows2sets(rows)
	if err != nil {
		return nil, err
	}

	if len(sets) != 1 {
		return nil, ErrSetNotFound
	}

	return &sets[0], nil
}

// ListAll returns the matching sets in chronological order (oldest
// first, ties broken by id), the order PR detection needs.
func (r *Repo) ListAll(ctx context.Context, params SetParams) (_ []training.LoggedSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("lift", string(params.Lift)))
	span.SetAttributes(attribute.Bool("only-prod", params.OnlyProd))
	span.SetAttributes(attribute.Bool("exclude-testing-data", params.ExcludeTestingData))
	if params.From != nil {
		span.SetAttributes(attribute.String("from", params.From.String()))
	}
	if params.To != nil {
		span.SetAttributes(attribute.String("to", params.To.String()))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, lift, weight, reps, rpe, warmup, metadata, created_at
			FROM logged_set
			WHERE ($1::text = '' OR lift = $1)
			AND ($2::timestamp IS NULL OR created_at >= $2)
			AND ($3::timestamp IS NULL OR created_at <= $3)
			AND ($4::boolean IS FALSE OR metadata->>'env' = 'prod' OR metadata->>'env' = 'production')
			AND ($5::boolean IS FALSE OR (COALESCE(metadata->>'testing', '') != 'true' AND COALESCE(metadata->>'test', '') != 'true'))
			ORDER BY created_at ASC, id ASC;`,
		params.Lift,
		params.From, params.To,
		params.OnlyProd, params.ExcludeTestingData,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	sets, err := r.rows2sets(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2sets: %w", err)
	}
	return sets, nil
}

// List is like ListAll, but paginated and newest first, used by the UI.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []training.LoggedSet, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("size", params.Size))
	span.SetAttributes(attribute.String("lift", string(params.Lift)))

	if params.Page < 1 {
		return nil, -1, errors.New("page must be greater than 0")
	}
	if params.Size < 1 {
		return nil, -1, errors.New("size must be greater than 0")
	}

	limit := params.Size
	offset := (params.Page - 1) * params.Size
	countAll, err := r.Count(ctx, params.SetParams)
	if err != nil {
		return nil, -1, err
	}

	if countAll <= limit {
		limit = countAll
		offset = 0
	}

	if countAll-offset < limit {
		offset = countAll - limit
	}

	span.SetAttributes(attribute.Int("count_all", countAll))
	span.SetAttributes(attribute.Int("limit", limit))
	span.SetAttributes(attribute.Int("offset", offset))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, lift, weight, reps, rpe, warmup, metadata, created_at
			FROM logged_set
			WHERE ($1::text = '' OR lift = $1)
			AND ($4::boolean IS FALSE OR metadata->>'env' = 'prod' OR metadata->>'env' = 'production')
			AND ($5::boolean IS FALSE OR (COALESCE(metadata->>'testing', '') != 'true' AND COALESCE(metadata->>'test', '') != 'true'))
			ORDER BY created_at DESC, id DESC
			LIMIT $2
			OFFSET $3;`,
		params.Lift,
		limit, offset,
		params.OnlyProd, params.ExcludeTestingData,
	)
	if err != nil {
		return nil, -1, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, -1, err
	}

	sets, err := r.rows2sets(rows)
	if err != nil {
		return nil, -1, err
	}
	return sets, countAll, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM logged_set WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}
	return nil
}

func (r *Repo) Count(ctx context.Context, params SetParams) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sets.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT COUNT(*) FROM logged_set
			WHERE ($1::text = '' OR lift = $1)
			AND ($2::timestamp IS NULL OR created_at >= $2)
			AND ($3::timestamp IS NULL OR created_at <= $3)
			AND ($4::boolean IS FALSE OR metadata->>'env' = 'prod' OR metadata->>'env' = 'production')
			AND ($5::boolean IS FALSE OR (COALESCE(metadata->>'testing', '') != 'true' AND COALESCE(metadata->>'test', '') != 'true'));
	`,
		params.Lift,
		params.From, params.To,
		params.OnlyProd, params.ExcludeTestingData,
	)
	if err != nil {
		return -1, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return -1, err
	}

	if rows.Next() {
		var count int
		if err := rows.Scan(&count); err == nil {
			return count, nil
		}
	}

	return -1, errors.New("unexpected error, failed to get logged sets count")
}

func (r *Repo) rows2sets(rows pgx.Rows) ([]training.LoggedSet, error) {
	var sets []training.LoggedSet
	for rows.Next() {
		var id int
		var lift string
		var weight float64
		var reps int
		var rpe *float64
		var warmup bool
		var metadataBytes []byte
		var createdAt time.Time
		if err := rows.Scan(&id, &lift, &weight, &reps, &rpe, &warmup, &metadataBytes, &createdAt); err != nil {
			return nil, err
		}

		s := training.LoggedSet{
			ID:        id,
			Lift:      training.Lift(lift),
			Weight:    weight,
			Reps:      reps,
			RPE:       rpe,
			Warmup:    warmup,
			CreatedAt: createdAt,
		}

		// metadata comes back as raw JSON
		if len(metadataBytes) > 0 {
			var metadataMap map[string]interface{}
			if err := json.Unmarshal(metadataBytes, &metadataMap); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for set %d: %w", id, err)
			}

			s.Metadata = make(map[string]string)
			for k, v := range metadataMap {
				s.Metadata[k] = fmt.Sprint(v)
			}
		} else {
			s.Metadata = make(map[string]string)
		}

		sets = append(sets, s)
	}

	if sets == nil {
		sets = make([]training.LoggedSet, 0)
	}

	return sets, nil
}
