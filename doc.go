/*
sqlbgone infers the types of the parameters and result columns of SQL statements from the schema they run against, without running them.

A Schema is built from the CREATE TABLE statements of a database.
Each column must be declared with one of the storage classes integer, real, text or blob.
Other statements in the schema text are ignored.

	sch, err := sqlbgone.BuildSchema(`
		CREATE TABLE person (
			name text,
			id integer,
			team text
		);`)

The Schema then computes the Signature of a statement: the type of each positional placeholder and the type of each result column.

	sig, err := sch.Infer(`SELECT name, id FROM person WHERE team = ?`)
	// sig.Inputs is [TEXT], sig.Outputs is [TEXT INTEGER]

A Signature can check Go arguments before they are sent to the database with CheckArgs, and Verify compares it with what a live database reports for the statement.

# Typing rules

A column is typed by its declaration.
Unqualified columns are looked up in the joined tables in the order they are listed, and then in the table named in FROM.
Qualified columns are looked up in the schema directly.

Comparisons, arithmetic, AND and OR are typed INTEGER.
A placeholder that is one side of such an expression takes the type of the other side.
A placeholder given as a value of an INSERT takes the type of its column.
MAX and MIN have the type of their argument, and a subquery has the type of its first result column.

# Supported statements

Only SELECT and INSERT ... VALUES are supported.
Aliased and wildcard projections, literals, and operators such as LIKE, IN and CASE are rejected with an error rather than guessed at.
Placeholders outside the projections and WHERE clause of a SELECT cannot be typed and make inference fail.
Only the first row of a multi-row INSERT is typed; the placeholders of the rows after it are not checked.

All errors can be matched with errors.Is against the Err variables of this package.
*/
package sqlbgone
