package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/reqkey/internal/reqerr"
	"github.com/roach88/reqkey/internal/request"
	"github.com/roach88/reqkey/internal/statement"
)

// Scalar runs an aggregate or count request and returns the single value
// as the driver scanned it. An aggregate over no rows returns nil.
func (s *Store) Scalar(ctx context.Context, r *request.Request) (any, error) {
	stmt, err := s.prepare(r, request.ShapeAverage, request.ShapeMin, request.ShapeMax, request.ShapeSum, request.ShapeCount)
	if err != nil {
		return nil, err
	}
	var v any
	if err := s.db.QueryRowxContext(ctx, stmt.SQL, stmt.Args...).Scan(&v); err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.Kind(), r.Name(), err)
	}
	return v, nil
}

// Count runs a count request.
func (s *Store) Count(ctx context.Context, r *request.Request) (int64, error) {
	stmt, err := s.prepare(r, request.ShapeCount)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowxContext(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s %s: %w", r.Kind(), r.Name(), err)
	}
	return n, nil
}

// Exists runs an exists request.
func (s *Store) Exists(ctx context.Context, r *request.Request) (bool, error) {
	stmt, err := s.prepare(r, request.ShapeExists)
	if err != nil {
		return false, err
	}
	var one int
	err = s.db.QueryRowxContext(ctx, stmt.SQL, stmt.Args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", r.Kind(), r.Name(), err)
	}
	return true, nil
}

// Exec runs a delete request and returns the number of affected rows.
func (s *Store) Exec(ctx context.Context, r *request.Request) (int64, error) {
	stmt, err := s.prepare(r, request.ShapeDelete)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", r.Kind(), r.Name(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s %s: rows affected: %w", r.Kind(), r.Name(), err)
	}
	return n, nil
}

// Rows runs a select request. Callers are responsible for closing the
// returned rows and for scanning them.
func (s *Store) Rows(ctx context.Context, r *request.Request) (*sqlx.Rows, error) {
	stmt, err := s.prepare(r, request.ShapeSelect)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryxContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.Kind(), r.Name(), err)
	}
	return rows, nil
}

// Statement renders r the way the store would run it.
func (s *Store) Statement(r *request.Request) (statement.Statement, error) {
	if r == nil {
		return statement.Statement{}, reqerr.InvalidArgument("cannot run a nil request")
	}
	var (
		stmt statement.Statement
		err  error
	)
	if r.Builder() != nil {
		stmt, err = r.Statement()
	} else {
		stmt, err = s.builder.Build(r)
	}
	if err != nil {
		return statement.Statement{}, err
	}
	stmt.SQL = s.db.Rebind(stmt.SQL)
	return stmt, nil
}

// prepare checks r's shape against the accepted shapes and renders it.
func (s *Store) prepare(r *request.Request, shapes ...request.Shape) (statement.Statement, error) {
	if r == nil {
		return statement.Statement{}, reqerr.InvalidArgument("cannot run a nil request")
	}
	shape := r.Spec().Shape
	if !slices.Contains(shapes, shape) {
		return statement.Statement{}, reqerr.InvalidArgument("%s request renders a %s statement, which this call cannot run", r.Kind(), shape)
	}

	stmt, err := s.Statement(r)
	if err != nil {
		return statement.Statement{}, err
	}
	s.logger.Debug("executing request",
		"kind", r.Kind(),
		"target", r.Name(),
		"sql", stmt.SQL,
		"args", len(stmt.Args),
	)
	return stmt, nil
}
