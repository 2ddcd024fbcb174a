package main

import (
	"fmt"
	"io"
	"time"

	"zenc/internal/buildpipeline"
	"zenc/internal/observ"
)

func printStageTimings(out io.Writer, timings *buildpipeline.Timings, timer *observ.Timer) {
	if out == nil || timings == nil {
		return
	}
	labels := map[buildpipeline.Stage]string{
		buildpipeline.StageLoad:    "loaded",
		buildpipeline.StageCodegen: "generated",
		buildpipeline.StageEmit:    "wrote",
		buildpipeline.StageRun:     "ran",
	}
	for _, stage := range buildpipeline.Stages {
		if timings.Has(stage) {
			fmt.Fprintf(out, "%s %.1f ms\n", labels[stage], toMillis(timings.Duration(stage)))
		}
	}
	if timer != nil {
		fmt.Fprint(out, timer.Summary())
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
