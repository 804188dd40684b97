//go:build windows

package watch

import "os"

// Windows has no SIGHUP; reloads come from the file watcher only
func reloadSignals() []os.Signal {
	return nil
}
