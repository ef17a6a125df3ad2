// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbgone

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlbgone/sqltype"
)

type VerifySuite struct {
	schema *Schema
	db     *sql.DB
}

var _ = Suite(&VerifySuite{})

const verifySchema = `
CREATE TABLE package (
	u_id text NOT NULL PRIMARY KEY,
	sender text NOT NULL,
	destination_id text NOT NULL,
	size_id integer NOT NULL
);
CREATE TABLE space (
	id integer PRIMARY KEY,
	locker_id text NOT NULL,
	size_id integer NOT NULL
);
`

func (s *VerifySuite) SetUpSuite(c *C) {
	s.schema = MustBuildSchema(verifySchema)
}

func (s *VerifySuite) TearDownTest(c *C) {
	if s.db != nil {
		c.Check(s.db.Close(), IsNil)
		s.db = nil
	}
	s.triggerFinalizers()
	s.checkDriverStmtsAllClosed(c)
}

func (s *VerifySuite) TearDownSuite(_ *C) {
	stmtRegistryMutex.Lock()
	closedStmts = map[string]map[uintptr]bool{}
	openedStmts = map[string]map[uintptr]string{}
	stmtRegistryMutex.Unlock()

	queriesRunMutex.Lock()
	queriesRun = map[string]int{}
	queriesRunMutex.Unlock()
}

func (s *VerifySuite) TestVerifyInferredSignatures(c *C) {
	db := s.openDB(c)
	queries := []string{
		"SELECT u_id, size_id FROM package WHERE sender = ?",
		"SELECT package.sender, space.locker_id FROM package JOIN space ON package.size_id = space.size_id WHERE space.size_id = ? AND package.destination_id = ?",
		"SELECT MAX(size_id) FROM space WHERE locker_id = ?",
		"SELECT u_id FROM package WHERE size_id = (SELECT size_id FROM space WHERE id = ?)",
	}
	for _, q := range queries {
		sig, err := s.schema.Infer(q)
		c.Assert(err, IsNil, Commentf("%s", q))
		err = Verify(context.Background(), db, sig)
		c.Check(err, IsNil, Commentf("%s", q))
	}
	s.checkDriverStmtsOpened(c, len(queries))
	s.checkQueriesRun(c, len(queries))
}

func (s *VerifySuite) TestVerifyInsertDoesNotRun(c *C) {
	db := s.openDB(c)
	sig, err := s.schema.Infer("INSERT INTO package (u_id, sender, destination_id, size_id) VALUES (?, ?, ?, ?)")
	c.Assert(err, IsNil)

	err = Verify(context.Background(), db, sig)
	c.Assert(err, IsNil)
	s.checkDriverStmtsOpened(c, 1)
	s.checkQueriesRun(c, 0)

	var n int
	err = db.QueryRow("SELECT COUNT(*) FROM package").Scan(&n)
	c.Assert(err, IsNil)
	c.Check(n, Equals, 0)
}

func (s *VerifySuite) TestVerifyInputCountMismatch(c *C) {
	db := s.openDB(c)
	sig := &Signature{
		SQL:     "SELECT sender FROM package WHERE u_id = ?",
		Inputs:  []sqltype.Type{sqltype.Text, sqltype.Text},
		Outputs: []sqltype.Type{sqltype.Text},
	}
	err := Verify(context.Background(), db, sig)
	c.Assert(err, ErrorMatches, "cannot verify statement: statement has 1 parameters, signature has 2 inputs")
	s.checkQueriesRun(c, 0)
}

func (s *VerifySuite) TestVerifyOutputCountMismatch(c *C) {
	db := s.openDB(c)
	sig := &Signature{
		SQL:     "SELECT sender, size_id FROM package",
		Inputs:  []sqltype.Type{},
		Outputs: []sqltype.Type{sqltype.Text},
	}
	err := Verify(context.Background(), db, sig)
	c.Assert(err, ErrorMatches, "cannot verify statement: statement has 2 result columns, signature has 1 outputs")
}

func (s *VerifySuite) TestVerifyOutputTypeMismatch(c *C) {
	db := s.openDB(c)
	sig := &Signature{
		SQL:     "SELECT sender FROM package WHERE u_id = ?",
		Inputs:  []sqltype.Type{sqltype.Text},
		Outputs: []sqltype.Type{sqltype.Integer},
	}
	err := Verify(context.Background(), db, sig)
	c.Assert(err, ErrorMatches, `cannot verify statement: result column 1 \(sender\) is TEXT, signature has INTEGER`)
}

func (s *VerifySuite) TestVerifyUnknownTable(c *C) {
	db := s.openDB(c)
	sig := &Signature{
		SQL:     "SELECT id FROM locker",
		Inputs:  []sqltype.Type{},
		Outputs: []sqltype.Type{sqltype.Text},
	}
	err := Verify(context.Background(), db, sig)
	c.Assert(err, ErrorMatches, "cannot verify statement: no such table: locker")
}

// openDB returns a database holding verifySchema. The database lives in
// memory on a single connection.
func (s *VerifySuite) openDB(c *C) *sql.DB {
	name := c.TestName()
	db, err := sql.Open("sqlite3_stmtChecked", "file:"+name+"?mode=memory&"+testNameTag+"="+name)
	c.Assert(err, IsNil)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(verifySchema)
	c.Assert(err, IsNil)

	// Creating the schema is not counted.
	queriesRunMutex.Lock()
	queriesRun[name] = 0
	queriesRunMutex.Unlock()

	s.db = db
	return db
}

func (s *VerifySuite) triggerFinalizers() {
	// Try to run finalizers by calling GC several times.
	for i := 0; i <= 10; i++ {
		runtime.GC()
		time.Sleep(0)
	}
}

func (s *VerifySuite) checkDriverStmtsAllClosed(c *C) {
	stmtRegistryMutex.RLock()
	defer stmtRegistryMutex.RUnlock()
	c.Check(len(openedStmts[c.TestName()]), Equals, len(closedStmts[c.TestName()]))
}

func (s *VerifySuite) checkDriverStmtsOpened(c *C, n int) {
	stmtRegistryMutex.RLock()
	defer stmtRegistryMutex.RUnlock()
	c.Check(openedStmts[c.TestName()], HasLen, n)
}

func (s *VerifySuite) checkQueriesRun(c *C, n int) {
	queriesRunMutex.RLock()
	defer queriesRunMutex.RUnlock()
	c.Check(queriesRun[c.TestName()], Equals, n)
}
