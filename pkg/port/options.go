package port

// Option configures a port at construction time.
type Option func(*config)

type config struct {
	help           string
	dataType       string
	maxConnections *int
	optional       bool
	inportReady    func(*Inport) bool
	outportReady   func(*Outport) bool
}

// WithHelp sets the descriptive text of the port.
func WithHelp(help string) Option {
	return func(c *config) {
		c.help = help
	}
}

// WithDataType restricts connections to ports of the same data type.
// Untyped ports connect to anything.
func WithDataType(dataType string) Option {
	return func(c *config) {
		c.dataType = dataType
	}
}

// WithMaxConnections caps the number of edges on the port; 0 means unbounded.
// Inports default to 1, outports to unbounded.
func WithMaxConnections(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.maxConnections = &n
	}
}

// WithOptional marks an inport as optional from the start.
func WithOptional(optional bool) Option {
	return func(c *config) {
		c.optional = optional
	}
}

// WithReadyPredicate replaces the default inport readiness rule.
func WithReadyPredicate(fn func(*Inport) bool) Option {
	return func(c *config) {
		c.inportReady = fn
	}
}

// WithOutportReady replaces the default outport readiness rule (has data).
func WithOutportReady(fn func(*Outport) bool) Option {
	return func(c *config) {
		c.outportReady = fn
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
