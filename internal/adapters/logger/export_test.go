package logger

// ErrorEntry exposes errorEntry for tests.
type ErrorEntry = errorEntry

var (
	CollectErrorEntriesExported = collectErrorEntries
	FormatErrorEntriesExported  = formatErrorEntries
)
