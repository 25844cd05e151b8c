/*
Package dump provides I/O operations for collected stream ledgers.

A dump captures every record of a ledger.Store at some point, so the ledger can
be reproduced later, e.g. by a command line tool working between runs or in
tests.

The package works with dumps stored in the file system using human-readable
encoding.
*/
package dump
