package lndclient

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/channelguard/channel-guard/internal/types"
)

// classifyError maps an lnd RPC failure onto the guard's error kinds.
// Anything that is not clearly a rejection of the request is treated as a
// connectivity problem and retried with backoff.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.NewConnectivityError(op, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return types.NewConnectivityError(op, err)
	}

	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange,
		codes.PermissionDenied, codes.AlreadyExists:
		return types.NewPolicyApplyError(op, err)
	default:
		return types.NewConnectivityError(op, err)
	}
}
