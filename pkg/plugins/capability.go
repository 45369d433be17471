package plugins

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gridworks/anmgr/pkg/params"
	"github.com/gridworks/anmgr/pkg/summary"
)

// CloseOut is the result code of a plugin step
type CloseOut int

const (
	CloseOutSuccess CloseOut = iota
	CloseOutFailed
	CloseOutNoData
)

func (c CloseOut) String() string {
	switch c {
	case CloseOutSuccess:
		return "success"
	case CloseOutFailed:
		return "failed"
	case CloseOutNoData:
		return "no-data"
	default:
		return "unknown"
	}
}

// StepContext is handed to a plugin before it runs
type StepContext struct {
	ToolName string
	WorkDir  string
	Params   *params.Store
	Summary  *summary.Summary
	Logger   zerolog.Logger
}

// ResourceStager copies or links the inputs a step tool needs into the work directory
type ResourceStager interface {
	Setup(sc *StepContext) error
	GetResources(ctx context.Context) (CloseOut, error)
}

// ToolRunner runs a step tool against the staged resources
type ToolRunner interface {
	Setup(sc *StepContext) error
	RunTool(ctx context.Context) (CloseOut, error)
}
