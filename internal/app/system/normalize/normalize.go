// Package normalize trims and canonicalizes user-supplied values before
// they are stored or compared.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name. Case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Handle trims a user handle and strips a leading "@". Case is preserved;
// lookups use the folded copy.
func Handle(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

// Path trims a namespace path and its surrounding slashes.
func Path(s string) string {
	return strings.Trim(strings.TrimSpace(s), "/")
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Level lowercases and trims a notification level.
func Level(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query parameter. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
