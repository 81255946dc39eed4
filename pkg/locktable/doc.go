/*
Package locktable implements the wait-for graph and deadlock detector.
Every UID has at most one holder XID and a FIFO queue of waiting XIDs;
every waiting XID waits on at most one UID. That shape makes the
wait-for graph a simple functional chain rather than a general graph,
so cycle detection is a single walk (xid → its UID → that UID's holder
→ ...) rather than a full DFS, using a monotonic timestamp to mark
visited nodes within one walk.

Add either grants immediately (returns a nil channel) or enrolls the
caller as a waiter and returns a channel that closes once it becomes
the holder — a "wait latch" implemented as a one-shot channel instead
of a lock-then-immediately-unlock mutex for clarity. Remove releases
every UID an XID held, handing each to the next live waiter in FIFO
order.
*/
package locktable
