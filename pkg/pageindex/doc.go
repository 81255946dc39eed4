/*
Package pageindex implements the free-space histogram that guides where
pkg/dm places new data items: 41 buckets of page
numbers, bucketed by how much free space each page had the last time it
was released back to the index.

Quantum = page.Size/40, so bucket i holds pages known to have between
i*quantum and (i+1)*quantum-1 bytes free. Add puts a page in the bucket
for its free space; Select removes and returns a page from the smallest
bucket that can satisfy a requested size, or ok=false if none can.
*/
package pageindex
