package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Score met the threshold, or nothing was gated
	ExitGateFailed = 1 // --gate was set and the score fell short
	ExitError      = 2 // Configuration or runtime error
)

// GateFailureError indicates that scoring ran successfully but the draft
// did not pass: either the score fell short of the threshold or at least one
// criterion landed in the critical band.
type GateFailureError struct {
	Score     int
	Threshold int
	Critical  int
}

func (e *GateFailureError) Error() string {
	if e.Score < e.Threshold {
		return fmt.Sprintf("score %d is below the %d threshold", e.Score, e.Threshold)
	}
	if e.Critical == 1 {
		return fmt.Sprintf("score %d meets the %d threshold but 1 criterion is critical", e.Score, e.Threshold)
	}
	return fmt.Sprintf("score %d meets the %d threshold but %d criteria are critical", e.Score, e.Threshold, e.Critical)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var gateErr *GateFailureError
		if errors.As(err, &gateErr) {
			os.Exit(ExitGateFailed)
		}

		os.Exit(ExitError)
	}
}
