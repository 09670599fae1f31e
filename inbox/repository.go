package inbox

import "context"

// Reader provides read operations for retained entries
type Reader interface {
	// List returns the retained entries, newest first
	List(ctx context.Context) ([]Entry, error)
}

// Writer provides write operations for retained entries
type Writer interface {
	/* Append inserts an entry at the front
	 * The oldest entry is evicted once capacity is exceeded
	 */
	Append(ctx context.Context, entry Entry) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
