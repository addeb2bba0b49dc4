//go:build windows

package backend

import "golang.org/x/sys/windows"

// Privileges reports whether the process token is elevated.
func Privileges() Privilege {
	if windows.GetCurrentProcessToken().IsElevated() {
		return Privilege{Elevated: true, Detail: "administrator"}
	}
	return Privilege{Detail: "not elevated; run as Administrator to control services"}
}
