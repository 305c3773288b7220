package logger

// CollectErrorEntries exposes collectErrorEntries for testing.
func CollectErrorEntries(err error) []ErrorEntry {
	return collectErrorEntries(err)
}

// FormatErrorEntries exposes formatErrorEntries for testing.
func FormatErrorEntries(entries []ErrorEntry) string {
	return formatErrorEntries(entries)
}
