// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/canonical/sqlbgone"
	"github.com/canonical/sqlbgone/sqltype"
)

func loadSchema(path string) (*sqlbgone.Schema, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sch, err := sqlbgone.BuildSchema(string(text))
	if err != nil {
		return nil, err
	}
	log.Infof("schema %s has %d tables", path, len(sch.Tables()))
	return sch, nil
}

func inferCommand(c *cli.Context, stdin io.Reader, stderr io.Writer) error {
	cfg, err := setup(c, stderr)
	if err != nil {
		return err
	}
	if cfg.Format != "text" && cfg.Format != "json" {
		return fmt.Errorf("unknown format %q", cfg.Format)
	}
	sch, err := loadSchema(cfg.Schema)
	if err != nil {
		return err
	}

	stmts := []string(c.Args())
	if len(stmts) == 0 {
		input, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		stmts = splitStatements(string(input))
	}

	sigs := make([]*sqlbgone.Signature, 0, len(stmts))
	for i, stmt := range stmts {
		log.Debugf("inferring %q", stmt)
		sig, err := sch.Infer(stmt)
		if err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
		sigs = append(sigs, sig)
	}
	return writeSignatures(c.App.Writer, cfg.Format, sigs)
}

type jsonSignature struct {
	SQL     string         `json:"sql"`
	Inputs  []sqltype.Type `json:"inputs"`
	Outputs []sqltype.Type `json:"outputs"`
}

func writeSignatures(w io.Writer, format string, sigs []*sqlbgone.Signature) error {
	if format == "json" {
		out := make([]jsonSignature, len(sigs))
		for i, sig := range sigs {
			out[i] = jsonSignature{SQL: sig.SQL, Inputs: sig.Inputs, Outputs: sig.Outputs}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, sig := range sigs {
		if _, err := fmt.Fprintln(w, sig); err != nil {
			return err
		}
	}
	return nil
}

// splitStatements splits text at semicolons, dropping empty statements.
func splitStatements(text string) []string {
	var stmts []string
	for _, s := range strings.Split(text, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func schemaCommand(c *cli.Context, stderr io.Writer) error {
	cfg, err := setup(c, stderr)
	if err != nil {
		return err
	}
	sch, err := loadSchema(cfg.Schema)
	if err != nil {
		return err
	}
	for _, table := range sch.Tables() {
		cols, err := sch.Columns(table)
		if err != nil {
			return err
		}
		defs := make([]string, len(cols))
		for i, col := range cols {
			defs[i] = col.Name + " " + col.Type.String()
		}
		fmt.Fprintf(c.App.Writer, "%s(%s)\n", table, strings.Join(defs, ", "))
	}
	return nil
}
