package constants

// Static route constants
const (
	DocsRoute = "/docs/api/"
)
