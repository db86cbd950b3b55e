// Package guard marks the process as a test binary. Test files import it for
// its side effect so startup paths that dial Postgres or Redis stay inert.
package guard

import "os"

// EnvKey is the variable app.InTestMode reads.
const EnvKey = "TRACKER_TEST_MODE"

func init() {
	if os.Getenv(EnvKey) == "" {
		_ = os.Setenv(EnvKey, "1")
	}
}
