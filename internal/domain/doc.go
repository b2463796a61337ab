// Package domain holds the records of an oral exam: users, cases and their
// checklists, sessions with their transcript, scores, feedback, drills,
// streaks and per-user settings. Each record validates itself; persistence
// and transport live elsewhere.
package domain
