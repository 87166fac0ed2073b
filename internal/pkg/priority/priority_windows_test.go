//go:build windows

package priority

import (
	"os"
	"testing"

	"golang.org/x/sys/windows"
)

// restorePriority opens the current process and puts its priority class
// back when the test ends.
func restorePriority(t *testing.T) windows.Handle {
	t.Helper()
	ph, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION|windows.PROCESS_SET_INFORMATION, false, uint32(os.Getpid()))
	if err != nil {
		t.Fatalf("OpenProcess failed: %v", err)
	}
	orig, err := windows.GetPriorityClass(ph)
	if err != nil {
		windows.CloseHandle(ph)
		t.Fatalf("GetPriorityClass failed: %v", err)
	}
	t.Cleanup(func() {
		if err := windows.SetPriorityClass(ph, orig); err != nil {
			t.Errorf("restoring priority class %d failed: %v", orig, err)
		}
		windows.CloseHandle(ph)
	})
	return ph
}

func TestLower(t *testing.T) {
	ph := restorePriority(t)

	// A second call must leave the process idle and succeed again.
	for i := 1; i <= 2; i++ {
		if err := Lower(); err != nil {
			t.Fatalf("Lower call %d failed: %v", i, err)
		}
		got, err := windows.GetPriorityClass(ph)
		if err != nil {
			t.Fatalf("GetPriorityClass failed: %v", err)
		}
		if got != windows.IDLE_PRIORITY_CLASS {
			t.Errorf("after Lower call %d priority class = %d, want %d", i, got, windows.IDLE_PRIORITY_CLASS)
		}
	}
}
