//go:build !linux && !windows

package platform

import "runtime"

func describe() string {
	return runtime.GOOS
}
