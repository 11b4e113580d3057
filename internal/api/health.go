// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	stdctx "context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/taibuivan/etalage/internal/platform/constants"
	"github.com/taibuivan/etalage/internal/platform/respond"
)

// probeTimeout bounds each readiness probe; a hung store reports as failed.
const probeTimeout = 2 * time.Second

// Probe checks one store the catalog needs to serve writes: the database,
// the variant cache or the image blob root.
type Probe struct {
	Name  string
	Check func(stdctx.Context) error
}

type probeResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers returns the GET /health and GET /ready handlers.
//
// /health only proves the process is serving. /ready runs every probe in
// parallel and answers 503 "degraded" when any of them fails.
func NewHealthHandlers(logger *slog.Logger, probes ...Probe) (liveness, readiness http.HandlerFunc) {
	liveness = func(writer http.ResponseWriter, _ *http.Request) {
		respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
	}

	readiness = func(writer http.ResponseWriter, request *http.Request) {
		results := runProbes(request.Context(), logger, probes)

		status, httpStatus := "ready", http.StatusOK
		for _, result := range results {
			if !result.IsOK {
				status, httpStatus = "degraded", http.StatusServiceUnavailable
				break
			}
		}

		respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
			constants.FieldStatus: status,
			constants.FieldChecks: results,
		}})
	}

	return liveness, readiness
}

// runProbes keeps results in probe order regardless of completion order.
func runProbes(context stdctx.Context, logger *slog.Logger, probes []Probe) []probeResult {
	results := make([]probeResult, len(probes))

	var group sync.WaitGroup
	for index, probe := range probes {
		group.Add(1)
		go func() {
			defer group.Done()

			probeCtx, cancel := stdctx.WithTimeout(context, probeTimeout)
			defer cancel()

			results[index] = probeResult{Name: probe.Name, IsOK: true}
			if err := probe.Check(probeCtx); err != nil {
				results[index].IsOK = false
				results[index].Error = err.Error()
				logger.Error("readiness_probe_failed", slog.String("dependency", probe.Name), slog.Any("error", err))
			}
		}()
	}
	group.Wait()

	return results
}
