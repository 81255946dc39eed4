/*
Package statement defines the tagged statement records handed to
pkg/executor: Begin, Commit, Abort, Show, Create, Drop, Select, Insert,
Delete, Update. A SQL tokenizer/parser is explicitly out of scope for
this engine; this package builds the records a frontend would produce,
turning them into typed Go values rather than strings, so the executor
never re-parses text.
*/
package statement
