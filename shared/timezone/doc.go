// Package timezone provides timezone and calendar-date utilities for the application.
//
// Usage Examples:
//
//  1. Current time in the hotel timezone:
//     now := timezone.Now()
//
//  2. Calendar dates (check-in/check-out) are midnight UTC values:
//     day := timezone.DateOf(now)              // date of now as seen in the hotel timezone
//     in, err := timezone.ParseDate("2024-07-15")
//     s := timezone.FormatDate(in)             // "2024-07-15"
//
//  3. Formatting instants in the hotel timezone:
//     formatted := timezone.Format(t, time.RFC3339)
//
// The timezone is configured via the APP_TIMEZONE environment variable and is
// initialized when the package is imported. Use IANA names ("UTC", "America/Lima").
package timezone
