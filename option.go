package entstore

// WorldOptions configures store behavior.
type WorldOptions struct {
	logger             Logger
	initialCapacity    int    // Initial per-table row capacity.
	archetypeCacheSize uint32 // Entries in the archetype lookup cache.
}

// DefaultWorldOptions returns safe default configuration.
func DefaultWorldOptions() WorldOptions {
	return WorldOptions{
		logger:             DiscardLogger{},
		initialCapacity:    64,
		archetypeCacheSize: 128,
	}
}

// WorldOption configures world options using the functional options pattern.
type WorldOption func(*WorldOptions)

// WithLogger routes the store's log output to the given logger.
// The default discards everything.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger(l Logger) WorldOption {
	return func(opts *WorldOptions) {
		opts.logger = l
	}
}

// WithInitialCapacity sets the row capacity tables are created with.
// Larger values trade memory for fewer growth copies on bulk inserts.
//
//goland:noinspection GoUnusedExportedFunction
func WithInitialCapacity(rows int) WorldOption {
	return func(opts *WorldOptions) {
		if rows > 0 {
			opts.initialCapacity = rows
		}
	}
}

// WithArchetypeCacheSize bounds the lookup cache sitting in front of the
// archetype map. When the cache exceeds this size, the least recently used
// entries are evicted.
//
//goland:noinspection GoUnusedExportedFunction
func WithArchetypeCacheSize(entries uint32) WorldOption {
	return func(opts *WorldOptions) {
		if entries > 0 {
			opts.archetypeCacheSize = entries
		}
	}
}
