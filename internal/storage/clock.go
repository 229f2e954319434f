package storage

import "time"

// now is overridden in tests to simulate the passage of time without
// sleeping. time.Time values it returns carry a monotonic reading, so
// comparisons and subtractions between them are immune to wall-clock
// adjustments (see the time package's "Monotonic Clocks" section).
var now = time.Now
