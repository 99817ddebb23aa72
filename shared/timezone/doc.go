// Package timezone keeps every timestamp the application produces in a
// single configured location. Use timezone.Now instead of time.Now so
// stored and rendered times agree regardless of the host clock settings.
package timezone
