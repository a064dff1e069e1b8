package termcell

// Blinking selects what a blink tick redraws.
type Blinking uint8

const (
	BlinkCursor Blinking = 1 << iota
	BlinkText
)

// BlinkConfig holds the blink divisors. A phase toggles every Divisor ticks;
// zero disables that blink.
type BlinkConfig struct {
	Fast   uint8
	Slow   uint8
	Cursor uint8
}

// DefaultBlinkConfig returns the default divisors: rapid blink on every tick,
// slow text and cursor blink every fifth tick.
func DefaultBlinkConfig() BlinkConfig {
	return BlinkConfig{Fast: 1, Slow: 5, Cursor: 5}
}

// Blinker is the blink clock. The caller drives it by calling Tick at the
// base blink rate.
//
// A nil *Blinker reports every phase as showing. Blinker is not safe for
// concurrent use.
type Blinker struct {
	cfg BlinkConfig

	tick       uint8
	cursorTick uint8

	fastShowing   bool
	slowShowing   bool
	cursorShowing bool
}

// NewBlinker returns a clock with every phase showing.
func NewBlinker(cfg BlinkConfig) *Blinker {
	return &Blinker{
		cfg:           cfg,
		fastShowing:   true,
		slowShowing:   true,
		cursorShowing: true,
	}
}

// Tick advances the clock by one step and reports whether any phase
// selected by what toggled.
func (b *Blinker) Tick(what Blinking) bool {
	var textChanged, cursorChanged bool

	b.tick++
	if b.cfg.Fast != 0 && b.tick%b.cfg.Fast == 0 {
		b.fastShowing = !b.fastShowing
		textChanged = true
	}
	if b.cfg.Slow != 0 && b.tick%b.cfg.Slow == 0 {
		b.slowShowing = !b.slowShowing
		textChanged = true
	}

	b.cursorTick++
	if b.cfg.Cursor != 0 && b.cursorTick%b.cfg.Cursor == 0 {
		b.cursorShowing = !b.cursorShowing
		cursorChanged = true
	}

	return what&BlinkText != 0 && textChanged ||
		what&BlinkCursor != 0 && cursorChanged
}

// CursorMoved shows the cursor and restarts its blink period.
func (b *Blinker) CursorMoved() {
	b.cursorShowing = true
	b.cursorTick = 0
}

// Showing returns the current phases.
func (b *Blinker) Showing() (fast, slow, cursor bool) {
	if b == nil {
		return true, true, true
	}
	return b.fastShowing, b.slowShowing, b.cursorShowing
}
