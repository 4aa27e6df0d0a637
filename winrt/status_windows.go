//go:build windows

package winrt

import (
	"strings"

	"golang.org/x/sys/windows"
)

// statusMessage asks the system for the message text of Win32-facility codes.
func statusMessage(family string, code int32) string {
	if family != "HRESULT" {
		return ""
	}
	hr := HRESULT(code)
	if hr.Facility() != facilityWin32 {
		return ""
	}
	return strings.TrimSpace(windows.Errno(uint32(code) & 0xffff).Error())
}
