package interfaces

import (
	"context"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/model"
)

// BridgeClient is the seam to the external git bridge HTTP service.
type BridgeClient interface {
	// Push performs an authenticated file push. The client obtains a
	// challenge, signs it with the request's secret key, and sends all files
	// in one request.
	Push(ctx context.Context, req *model.PushRequest) (*model.PushResult, error)

	// RawFile fetches one file's raw bytes from the bridge.
	RawFile(ctx context.Context, owner, repo, branch, path string) ([]byte, string, error)

	// CreateBounty creates a bounty record via the bridge API.
	CreateBounty(ctx context.Context, req *model.BountyRequest) (map[string]any, error)
}
