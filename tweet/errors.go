package tweet

import "errors"

// Failure kinds surfaced by the fetch, thread, and download layers. Concrete
// errors wrap exactly one of these; callers inspect them with errors.Is.
var (
	ErrConnectivity    = errors.New("connection problem")
	ErrAuth            = errors.New("invalid or expired bearer token")
	ErrPostUnavailable = errors.New("post unavailable")
	ErrMalformedInput  = errors.New("malformed input")
	ErrThreadBroken    = errors.New("thread chain broken")
	ErrAssetDownload   = errors.New("asset download failed")
)
