package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain for structured logs. The PG fields are
// filled when a Postgres driver error sits anywhere in the chain.
type ErrorDump struct {
	TopMessage   string   `json:"top_message"`
	Code         Code     `json:"code,omitempty"`
	Chain        []string `json:"chain,omitempty"`
	PGCode       string   `json:"pg_code,omitempty"`
	PGConstraint string   `json:"pg_constraint,omitempty"`
	PGTable      string   `json:"pg_table,omitempty"`
	PGColumn     string   `json:"pg_column,omitempty"`
	PGDetail     string   `json:"pg_detail,omitempty"`
	PGMessage    string   `json:"pg_message,omitempty"`
}

func Dump(err error) ErrorDump {
	var d ErrorDump
	if err == nil {
		return d
	}
	d.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.fillPG(err)
	return d
}

func (d *ErrorDump) fillPG(err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.PGCode, d.PGConstraint, d.PGTable = pgErr.Code, pgErr.ConstraintName, pgErr.TableName
		d.PGColumn, d.PGDetail, d.PGMessage = pgErr.ColumnName, pgErr.Detail, pgErr.Message
		return
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode, d.PGConstraint, d.PGTable = string(pqErr.Code), pqErr.Constraint, pqErr.Table
		d.PGColumn, d.PGDetail, d.PGMessage = pqErr.Column, pqErr.Detail, pqErr.Message
	}
}
