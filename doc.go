// Package userbase contains the server-side core of an end-to-end encrypted,
// per-user database service. Each user owns an append-only log of opaque
// encrypted records; clients replicate that log and periodically upload a
// compacted snapshot ("bundle") of their local state. The server never sees
// plaintext, it arbitrates ordering, durability and delivery of encrypted
// blobs.
//
// This root package holds the shared types, backend interfaces and small
// utilities. Backend adapters live in the cassandra, aws_s3 and redis
// packages; the transaction engine and its supporting parts live in the
// common package.
package userbase
