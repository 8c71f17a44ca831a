package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/config"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/logging"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/service"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// maxIterations bounds a single request so it finishes inside the
// function timeout.
const maxIterations = 5000

type calcRequest struct {
	Mode     string           `json:"mode"` // simulate (default), expected or iv
	Member   int              `json:"member"`
	MemberID string           `json:"memberId"`
	Team     *config.TeamFile `json:"team"`
}

type calcResult struct {
	Mode   string `json:"mode"`
	TimeMs int64  `json:"timeMs"`
	Result any    `json:"result"`
}

type handler struct {
	svc *service.Service
}

func (h *handler) handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req calcRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}
	if req.Team == nil {
		return errResp(400, "missing team field")
	}
	if req.Team.Iterations > maxIterations {
		return errResp(400, fmt.Sprintf("iterations %d exceeds the limit of %d", req.Team.Iterations, maxIterations))
	}

	start := time.Now()
	r := service.Request{Team: req.Team}
	var result any
	var err error
	switch req.Mode {
	case "", "simulate":
		req.Mode = "simulate"
		var resp service.Response
		resp, err = h.svc.Simulate(ctx, r)
		result = resp
	case "expected":
		result, err = h.svc.Expected(r, req.Member)
	case "iv":
		if req.MemberID == "" {
			return errResp(400, "missing memberId")
		}
		result, err = h.svc.IV(ctx, r, req.MemberID)
	default:
		return errResp(400, fmt.Sprintf("unknown mode %q", req.Mode))
	}
	if err != nil {
		if service.IsBadRequest(err) {
			return errResp(400, err.Error())
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return errResp(504, "calculation timed out")
		}
		h.svc.Logger.Error("calculation failed", "mode", req.Mode, "err", err)
		return errResp(500, "internal error")
	}

	respJSON, err := json.Marshal(calcResult{Mode: req.Mode, TimeMs: time.Since(start).Milliseconds(), Result: result})
	if err != nil {
		return errResp(500, "encoding result: "+err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	logger := logging.NewJSONLogger(os.Getenv("LOG_LEVEL"), os.Stderr)
	svc, err := service.New(os.Getenv("SLEEPSIM_RULES"), "", logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	h := &handler{svc: svc}
	lambda.Start(h.handle)
}
