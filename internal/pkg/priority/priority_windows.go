//go:build windows
// +build windows

package priority

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/google/logger"
	"golang.org/x/sys/windows"
)

type PROCESS_POWER_THROTTLING_STATE struct {
	Version     uint32
	ControlMask uint32
	StateMask   uint32
}

// Lower moves the process, and the ffprobe children it starts afterwards,
// to the idle priority class with power throttling enabled.
func Lower() error {
	ph, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION|windows.PROCESS_SET_INFORMATION, false, uint32(os.Getpid()))
	if err != nil {
		return fmt.Errorf("windows.OpenProcess for pid: %v returned: %v", uint32(os.Getpid()), err)
	}
	defer func() {
		if err := windows.CloseHandle(ph); err != nil {
			logger.Warningf("failed to close handle after lowering priority: %v", err)
		}
	}()

	if err := windows.SetPriorityClass(ph, windows.IDLE_PRIORITY_CLASS); err != nil {
		return fmt.Errorf("windows.SetPriorityClass for pid: %v returned: %v", uint32(os.Getpid()), err)
	}

	// ProcessPowerThrottling information class
	t := PROCESS_POWER_THROTTLING_STATE{1, 1, 1}
	return windows.NtSetInformationProcess(ph, 77, unsafe.Pointer(&t), uint32(unsafe.Sizeof(t)))
}
