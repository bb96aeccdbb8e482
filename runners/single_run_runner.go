package runners

import (
	"context"
	"io"
	"log/slog"

	"github.com/alekLukanen/errs"

	taskpackets "github.com/alekLukanen/BreweryMedallion/taskPackets"
	"github.com/alekLukanen/BreweryMedallion/warehouse"
)

const (
	ExitCodeOK           = 0
	ExitCodeLayerFailure = 1
	ExitCodeJobFailure   = 2
)

type IJob interface {
	Handle(ctx context.Context, event taskpackets.TriggerEvent) warehouse.Response
}

type SingleRunRunnerOptions struct {
	// exit non-zero when any layer status in a 200 response is a failure
	FailOnLayerError bool
}

// SingleRunRunner runs one job invocation for one trigger event and writes
// the response as JSON.
type SingleRunRunner struct {
	logger *slog.Logger

	job     IJob
	out     io.Writer
	options SingleRunRunnerOptions
}

func NewSingleRunRunner(logger *slog.Logger, job IJob, out io.Writer, options SingleRunRunnerOptions) *SingleRunRunner {
	return &SingleRunRunner{
		logger:  logger,
		job:     job,
		out:     out,
		options: options,
	}
}

func (obj *SingleRunRunner) Run(ctx context.Context, event taskpackets.TriggerEvent) (warehouse.Response, int) {
	resp := obj.job.Handle(ctx, event)

	data, err := resp.Marshal()
	if err != nil {
		obj.logger.Error("failed encoding response", slog.String("error", errs.ErrorWithStack(err)))
		return resp, ExitCodeJobFailure
	}
	if _, err := obj.out.Write(append(data, '\n')); err != nil {
		obj.logger.Error("failed writing response", slog.String("error", errs.ErrorWithStack(errs.Wrap(err))))
	}

	obj.logger.Info("run finished", slog.Int("statusCode", resp.StatusCode))
	return resp, obj.exitCode(resp)
}

func (obj *SingleRunRunner) exitCode(resp warehouse.Response) int {
	if !resp.OK() {
		return ExitCodeJobFailure
	}
	if !obj.options.FailOnLayerError {
		return ExitCodeOK
	}
	if len(resp.FailedLayers) > 0 {
		return ExitCodeLayerFailure
	}
	return ExitCodeOK
}
