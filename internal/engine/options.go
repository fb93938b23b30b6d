package engine

// Default configuration values.
const (
	DefaultTabWidth       = 4
	DefaultMaxUndoEntries = 1000
)

// Option configures a PieceTree during construction.
type Option func(*config)

// config collects the values every Option may set before New/NewFromLines
// build the tree and its sub-packages from them.
type config struct {
	initialLines   []string
	tabWidth       int
	maxUndoEntries int
	readOnly       bool
	onChangeError  func(error)
}

func newConfig() *config {
	return &config{
		tabWidth:       DefaultTabWidth,
		maxUndoEntries: DefaultMaxUndoEntries,
	}
}

// WithInitialLines seeds the tree with the given lines: a leading
// line-feed piece followed by each line's pieces, joined by "\n".
// Mutually exclusive in effect with WithInitialText — whichever Option
// runs last wins.
func WithInitialLines(lines []string) Option {
	return func(c *config) {
		c.initialLines = lines
	}
}

// WithInitialText seeds the tree with text, splitting it on "\n" the
// same way WithInitialLines would. A convenience for the common case
// of loading a whole file's content as one string.
func WithInitialText(text string) Option {
	return func(c *config) {
		c.initialLines = splitLines(text)
	}
}

// WithTabWidth records the tab width a caller wants associated with
// this tree. The piece-tree engine itself has no notion of columns or
// rendering — that belongs to a higher-level document view — so this
// is carried purely as configuration a caller can read back via
// TabWidth, separate from anything the core algorithm itself consumes.
func WithTabWidth(width int) Option {
	return func(c *config) {
		if width > 0 {
			c.tabWidth = width
		}
	}
}

// WithMaxUndoEntries caps the number of undo groups retained. Once the
// cap is reached, the oldest group is dropped on the next push, to
// bound otherwise-unlimited history growth.
func WithMaxUndoEntries(max int) Option {
	return func(c *config) {
		if max > 0 {
			c.maxUndoEntries = max
		}
	}
}

// WithReadOnly creates a read-only tree: every mutating method returns
// ErrReadOnly instead of applying.
func WithReadOnly() Option {
	return func(c *config) {
		c.readOnly = true
	}
}

// WithChangeErrorHandler installs fn to observe errors a Change(fn)
// callback returns. Change always swallows that error and closes the
// group regardless; this Option is the opt-in way to observe it
// without altering that default. A nil fn restores silence.
func WithChangeErrorHandler(fn func(error)) Option {
	return func(c *config) {
		c.onChangeError = fn
	}
}
