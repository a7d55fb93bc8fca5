package extraction

import "context"

// Fetcher retrieves document bytes from a location.
// Failures wrap domain.ErrDownload.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Inspector validates document structure before decoding and reports its page count.
// Failures wrap domain.ErrDecode.
type Inspector interface {
	Inspect(ctx context.Context, data []byte) (int, error)
}
