//go:build !windows
// +build !windows

package priority

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// niceValue is applied to the process; children such as ffprobe inherit it.
const niceValue = 10

// Lower raises the nice value of the process so the ffprobe children it
// starts afterwards are scheduled behind interactive work.
func Lower() error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, niceValue); err != nil {
		return fmt.Errorf("Setpriority for pid: %v returned: %v", os.Getpid(), err)
	}
	return nil
}
