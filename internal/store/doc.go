// Package store declares the persistence interfaces used by the services:
// users, exam sessions and transcripts, drills, streaks, settings and the
// read-only case catalog. Implementations live in platform/postgres and
// internal/cases.
package store
