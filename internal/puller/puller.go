// Package puller shells out to the external container-pull tool that
// materializes an image reference into flatpod's object store. The tool
// itself is not part of this module; it is expected to be on PATH and to
// deposit, under ociimage/<escape(image)>, a committed tree containing
// manifest.json and content, plus one commit per layer under
// ociimage/<digest_token>.
package puller

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// Wraps every error this package returns except PullError, which callers
// match directly to recover the child process's exit code.
var ErrPuller = errors.New("puller error")

// Name of the external tool invoked by Push. Overridable in tests.
var ToolName = "flatpod-oci-pull"

// Raised when the external tool exits non-zero. The pipeline aborts with
// this exact exit code, per the object store's push contract.
type PullError struct {
	Image    string
	ExitCode int
	Stderr   string
}

func (e *PullError) Error() string {
	return "pull " + e.Image + ": exit code " + strconv.Itoa(e.ExitCode)
}

// Invokes the external tool to pull image into the object store reachable
// at the given containerd address, scoped to namespace. Blocks until the
// child exits. A non-zero exit produces a *PullError carrying the child's
// exact exit code, which the caller propagates as the process's own exit
// status.
func Push(ctx context.Context, image, address, namespace string) error {
	cmd := exec.CommandContext(ctx, ToolName, "push",
		"--address", address,
		"--namespace", namespace,
		image,
	)
	cmd.Stdout = os.Stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &PullError{
			Image:    image,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
		}
	}
	return errs.Wrap(ErrPuller, err)
}
