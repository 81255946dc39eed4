/*
Package catalog implements the table/field metadata layer: it persists
Table and Field records through pkg/vm (under the super XID, so DDL is
never subject to MVCC visibility), maintains each table's position in a
singly-linked chain anchored by a boot file, and translates typed row
values into the encoded form pkg/bplustree indexes expect.

Boot file: a small separate file holding the first table's UID (0 if the
catalog is empty). Updates go through a temp file plus rename so a crash
mid-write never leaves a torn pointer.

Each indexed Field owns a pkg/bplustree.Tree keyed by value2Key(value): a
int32 is sign-extended to int64, an int64 is used as-is, and a string is
folded through a 64-bit hash (see DESIGN.md — this can collide across
distinct strings, an accepted, preserved limitation, not a bug to fix
here).
*/
package catalog
