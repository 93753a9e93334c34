package program

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/strengthlab/liftstats/internal/telemetry/tracing"
	"github.com/strengthlab/liftstats/internal/training"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrProgramNotFound = errors.New("program not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, p Program) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.program.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	liftsJson, err := json.Marshal(liftsOf(p))
	if err != nil {
		return nil, fmt.Errorf("marshal lifts: %w", err)
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	err = r.db.QueryRow(ctx, `
		INSERT INTO program (type, week, cycle, session_number, workout_letter, lifts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		p.Type, p.Week, p.Cycle, p.SessionNumber, p.Workout, liftsJson, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("program.id", p.ID))
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.program.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	p, err := scanProgram(r.db.QueryRow(ctx, `
		SELECT id, type, week, cycle, session_number, workout_letter, lifts, created_at, updated_at
		FROM program
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *Repo) List(ctx context.Context) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.program.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, type, week, cycle, session_number, workout_letter, lifts, created_at, updated_at
		FROM program
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := make([]Program, 0)
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return programs, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.program.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM program WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProgramNotFound
	}
	return nil
}

// Advance loads the program inside a transaction with a row lock,
// applies the advance function and writes the new state back. The row
// lock serializes concurrent advances of the same program so none are
// lost.
func (r *Repo) Advance(
	ctx context.Context,
	id int,
	advance func(Program) (Program, error),
) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.program.advance")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	p, err := scanProgram(tx.QueryRow(ctx, `
		SELECT id, type, week, cycle, session_number, workout_letter, lifts, created_at, updated_at
		FROM program
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	next, err := advance(*p)
	if err != nil {
		return nil, err
	}
	next.ID = p.ID
	next.CreatedAt = p.CreatedAt
	next.UpdatedAt = time.Now()

	liftsJson, err := json.Marshal(liftsOf(next))
	if err != nil {
		return nil, fmt.Errorf("marshal lifts: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE program
		SET week = $1, cycle = $2, session_number = $3, workout_letter = $4, lifts = $5, updated_at = $6
		WHERE id = $7
	`,
		next.Week, next.Cycle, next.SessionNumber, next.Workout, liftsJson, next.UpdatedAt, next.ID,
	)
	if err != nil {
		return nil, err
	}

	return &next, nil
}

func liftsOf(p Program) map[training.Lift]float64 {
	if p.Type == TypePercentageCycle {
		return p.TrainingMaxes
	}
	return p.CurrentWeights
}

func scanProgram(row pgx.Row) (*Program, error) {
	var p Program
	var liftsBytes []byte
	if err := row.Scan(
		&p.ID, &p.Type, &p.Week, &p.Cycle, &p.SessionNumber, &p.Workout,
		&liftsBytes, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	lifts := make(map[training.Lift]float64)
	if len(liftsBytes) > 0 {
		if err := json.Unmarshal(liftsBytes, &lifts); err != nil {
			return nil, fmt.Errorf("unmarshal lifts for program %d: %w", p.ID, err)
		}
	}

	if p.Type == TypePercentageCycle {
		p.TrainingMaxes = lifts
	} else {
		p.CurrentWeights = lifts
	}

	return &p, nil
}
