package witness

import "time"

// nowFunc is indirected so tests can freeze time; production code never
// overrides it.
var nowFunc = time.Now
