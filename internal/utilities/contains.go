package utilities

// Contains reports whether s is present in slice. Used for role checks
// against allowed-role lists.
func Contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
