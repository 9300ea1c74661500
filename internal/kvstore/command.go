package kvstore

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// CommandResult carries the raw outcome of an ad-hoc command plus its
// wall-clock execution time in milliseconds.
type CommandResult struct {
	Result        any   `json:"result"`
	ExecutionTime int64 `json:"executionTime"`
}

// ExecuteCommand splits a raw command line on whitespace and invokes it
// directly against the client. There is no allow-list; this is an
// unrestricted admin/debug escape hatch.
func (r *Registry) ExecuteCommand(ctx context.Context, sessionID, commandLine string) (*CommandResult, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}

	log.Printf("[REDIS] Executing command on session %s: %s", sessionID, commandLine)
	start := time.Now()
	result, err := session.client.Do(ctx, args...).Result()
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("command failed: %w", err)
	}

	return &CommandResult{Result: result, ExecutionTime: elapsed}, nil
}

// Info returns the backend's free-form server/status report as text.
func (r *Registry) Info(ctx context.Context, sessionID string) (string, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return "", err
	}

	info, err := session.client.Info(ctx).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read server info: %w", err)
	}
	return info, nil
}

// DBSize returns the key count of the currently selected logical
// database.
func (r *Registry) DBSize(ctx context.Context, sessionID string) (int64, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return 0, err
	}

	size, err := session.client.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read database size: %w", err)
	}
	return size, nil
}
