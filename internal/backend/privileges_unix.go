//go:build !windows

package backend

import "golang.org/x/sys/unix"

// Privileges reports whether the process can control system services
// without an authentication prompt.
func Privileges() Privilege {
	if unix.Geteuid() == 0 {
		return Privilege{Elevated: true, Detail: "root"}
	}
	return Privilege{Detail: "unprivileged user; system units may require polkit authentication"}
}
