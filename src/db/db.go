/*
This package contains lowish-level helpers for querying our Postgres
database. It streamlines the process of mapping query results to Go types
while still allowing arbitrary SQL.

Struct results use pgx's name-based row mapping, so select explicit column
aliases matching the struct's `db:` tags:

	type topicRow struct {
		ID    int    `db:"id"`
		Title string `db:"title"`
	}
	topics, err := db.Query[topicRow](ctx, conn, `SELECT id, title FROM topics`)

Scalar results skip the struct mapping entirely:

	ids, err := db.QueryScalar[int](ctx, conn, `SELECT id FROM posts`)
*/
package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

/*
A general error to be used when no results are found. This is the error
returned by QueryOne, and can generally be used by other database helpers
that fetch a single result but find nothing.
*/
var NotFound = errors.New("not found")

/*
Performs a SQL query and returns a slice of all the result rows, mapped onto
the fields of T by column name. You must explicitly provide the type
argument - this is how it knows what Go type to map the results to, and it
cannot be inferred.
*/
func Query[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) ([]*T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
}

/*
Identical to Query, but returns only the first result row. If there are no
rows in the result set, returns NotFound.
*/
func QueryOne[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (*T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound
	}
	return result, err
}

/*
Identical to Query, but for single-column results, returning concrete values
instead of pointers. More convenient for primitive types.
*/
func QueryScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) ([]T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[T])
}

/*
Identical to QueryScalar, but returns only the first result value. If there
are no rows in the result set, returns NotFound.
*/
func QueryOneScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowTo[T])
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, NotFound
	}
	return result, err
}
