package volume

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/types"
)

// classifyRun maps a finished external command to an ErrorKind by inspecting
// its stderr. The mount tools do not report failure causes in a structured
// way, so this is keyword matching over the messages the common tools emit.
func classifyRun(result common.RunResult, err error) (types.ErrorKind, error) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return types.ErrKindTimeout, errors.New("operation timed out")
		}
		return types.ErrKindIO, err
	}

	if result.ExitCode == 0 {
		return types.ErrKindNone, nil
	}

	combined := strings.ToLower(result.Stderr + " " + result.Stdout)

	switch {
	case containsAny(combined,
		"permission denied",
		"logon failure",
		"access denied",
		"authentication",
		"system error 86", // net use: invalid password
		"system error 5",  // net use: access denied
	):
		return types.ErrKindAuth, runError(result)

	case containsAny(combined,
		"could not resolve",
		"unable to find suitable address",
		"no route to host",
		"network is unreachable",
		"connection refused",
		"connection timed out",
		"host is down",
		"system error 53", // net use: network path not found
		"system error 67", // net use: network name not found
	):
		return types.ErrKindUnreachable, runError(result)

	case containsAny(combined,
		"already mounted",
		"device or resource busy",
		"system error 85", // net use: local device name in use
	):
		return types.ErrKindAlreadyMounted, runError(result)

	default:
		return types.ErrKindIO, runError(result)
	}
}

func runError(result common.RunResult) error {
	msg := strings.TrimSpace(result.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(result.Stdout)
	}
	if msg == "" {
		msg = "command failed"
	}
	return fmt.Errorf("exit %d: %s", result.ExitCode, msg)
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
