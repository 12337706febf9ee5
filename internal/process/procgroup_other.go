//go:build !unix

package process

import "os/exec"

// setProcessGroup is a no-op where process groups are unavailable;
// cancellation falls back to killing the helper itself.
func setProcessGroup(cmd *exec.Cmd) {}
