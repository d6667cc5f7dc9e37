//go:build !windows

package asuswmi

import "errors"

// Connect requires the Windows WMI infrastructure.
func Connect() (Client, error) {
	return nil, errors.New("ASUS WMI access requires Windows")
}
