package driver

import "os"

// panicOrExit terminates the process abnormally. A removed node has no
// further role to play in the cluster.
func panicOrExit() {
	os.Exit(1)
}
