package publisher

// Publisher pushes scraped offers to downstream consumers.
type Publisher interface {
	// Publish publishes one offer payload under the given key
	Publish(key string, message []byte) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
