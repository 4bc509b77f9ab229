// Package automation invokes the external browser-automation script
// that toggles the account setting for members who have not paid. The
// script itself is an external collaborator; this wrapper only builds
// the invocation and reports its exit status.
package automation

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// Client wraps the enforcement script.
type Client struct {
	scriptPath string
	log        zerolog.Logger
}

// NewClient creates a Client for the script at the given path. An empty
// path yields a client whose runs fail with a clear error.
func NewClient(scriptPath string, logger zerolog.Logger) *Client {
	return &Client{
		scriptPath: scriptPath,
		log:        logger.With().Str("component", "automation").Logger(),
	}
}

// Disable runs the script with the given account names as arguments.
// The combined output and exit status are logged; a non-zero exit is
// returned as an error for the caller to log, nothing more.
func (c *Client) Disable(ctx context.Context, accounts []string) error {
	if c.scriptPath == "" {
		return fmt.Errorf("enforcement script path is not configured")
	}
	if len(accounts) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, c.scriptPath, accounts...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("enforcement script failed: %s (error: %w)", string(output), err)
	}

	c.log.Info().Int("accounts", len(accounts)).Str("output", string(output)).
		Msg("enforcement script finished")
	return nil
}
