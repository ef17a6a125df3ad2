// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Command sqlbgone prints the type signatures of SQL statements inferred from
// a schema file.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, Red(err.Error()))
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "sqlbgone"
	app.Usage = "infer the parameter and result types of SQL statements"
	app.Version = "0.1.0"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "YAML config `FILE`"},
	}
	schemaFlag := cli.StringFlag{Name: "schema", Usage: "`FILE` holding the CREATE TABLE statements"}
	app.Commands = []cli.Command{
		{
			Name:      "infer",
			Aliases:   []string{"i"},
			Usage:     "print the signature of each statement",
			ArgsUsage: "[STATEMENT...]",
			Description: "Statements are read from the arguments or, if there are none, " +
				"from standard input, separated by semicolons.",
			Flags: []cli.Flag{
				schemaFlag,
				cli.StringFlag{Name: "format", Usage: "output format, text or json"},
			},
			Action: func(c *cli.Context) error {
				return inferCommand(c, stdin, stderr)
			},
		},
		{
			Name:  "schema",
			Usage: "print the tables and columns of the schema",
			Flags: []cli.Flag{schemaFlag},
			Action: func(c *cli.Context) error {
				return schemaCommand(c, stderr)
			},
		},
	}
	return app
}

// setup loads the configuration, applies the command line flags over it and
// starts logging.
func setup(c *cli.Context, stderr io.Writer) (*Config, error) {
	cfg, err := LoadConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("schema") {
		cfg.Schema = c.String("schema")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if err := SetupLogging(stderr, cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.Schema == "" {
		return nil, fmt.Errorf("no schema file given")
	}
	return cfg, nil
}
