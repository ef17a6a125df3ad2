// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbgone

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/canonical/sqlbgone/sqltype"
)

// Verify checks sig against a database that already holds the schema sig
// was inferred with. The statement is prepared on a driver connection and
// the number of parameters the driver reports is compared with the inputs.
// If the statement has outputs it is run inside a transaction that is rolled
// back, with every argument NULL, and the result columns are compared with
// the outputs. A column is only compared by type when the driver reports a
// declared type for it.
//
// Only the first row of a multi-row INSERT is typed, so Verify reports such
// a statement as having more parameters than inputs.
func Verify(ctx context.Context, db *sql.DB, sig *Signature) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot verify statement: %w", err)
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	numInput, err := driverNumInput(ctx, conn, sig.SQL)
	if err != nil {
		return err
	}
	if numInput >= 0 && numInput != len(sig.Inputs) {
		return fmt.Errorf("statement has %d parameters, signature has %d inputs", numInput, len(sig.Inputs))
	}

	if len(sig.Outputs) == 0 {
		return nil
	}
	return verifyOutputs(ctx, conn, sig)
}

// driverNumInput prepares query directly on the driver connection and
// returns the number of placeholders the driver found, or -1 if the driver
// does not know.
func driverNumInput(ctx context.Context, conn *sql.Conn, query string) (numInput int, err error) {
	err = conn.Raw(func(driverConn any) error {
		var stmt driver.Stmt
		var err error
		switch dc := driverConn.(type) {
		case driver.ConnPrepareContext:
			stmt, err = dc.PrepareContext(ctx, query)
		case driver.Conn:
			stmt, err = dc.Prepare(query)
		default:
			return fmt.Errorf("driver connection %T cannot prepare statements", driverConn)
		}
		if err != nil {
			return err
		}
		defer stmt.Close()
		numInput = stmt.NumInput()
		return nil
	})
	return numInput, err
}

func verifyOutputs(ctx context.Context, conn *sql.Conn, sig *Signature) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	args := make([]any, len(sig.Inputs))
	rows, err := tx.QueryContext(ctx, sig.SQL, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return err
	}
	if len(cols) != len(sig.Outputs) {
		return fmt.Errorf("statement has %d result columns, signature has %d outputs", len(cols), len(sig.Outputs))
	}
	for i, col := range cols {
		declared := col.DatabaseTypeName()
		if declared == "" {
			continue
		}
		typ, err := sqltype.Parse(declared)
		if err != nil {
			// Not one of the storage classes, nothing to compare.
			continue
		}
		if typ != sig.Outputs[i] {
			return fmt.Errorf("result column %d (%s) is %s, signature has %s", i+1, col.Name(), typ, sig.Outputs[i])
		}
	}
	return rows.Err()
}
