package interfaces

import (
	"context"

	"equity-analyst/internal/types"
)

type Analyst interface {
	Run(ctx context.Context, question string, parsed types.ParsedIntent) (types.Analysis, error)
}
