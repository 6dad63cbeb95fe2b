package main

import (
	"context"

	"github.com/lumiforge/mediavault-backend/internal/cloudfunction"
)

// Handler точка входа Cloud Function (entrypoint: index.Handler)
func Handler(ctx context.Context, request []byte) ([]byte, error) {
	return cloudfunction.Handler(ctx, request)
}
