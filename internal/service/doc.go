// Package service contains the application use cases of the exam simulator.
// It orchestrates the domain engine (internal/domain/examiner, srs) and the
// stores defined in internal/store.
//
// Services:
//
//   - SessionService runs an oral exam: start, answer, finish, feedback.
//   - Debriefer builds the post-session debrief. It runs in the background
//     task runner after a session finishes.
//   - DrillService grades drill attempts and reschedules them.
//   - StreakService and SettingsService expose per-user state.
//   - UserService registers and authenticates users.
//
// Writes that span several stores run in one transaction through
// store.RunInTransaction. Store sentinels are translated into the service
// sentinels in errors.go; the API layer maps those to HTTP status codes.
package service
