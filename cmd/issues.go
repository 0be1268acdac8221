package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/backoffice-extract/internal/report"
	"github.com/ginjaninja78/backoffice-extract/pkg/utils"
)

// writeIssueLog prints the issue counts and writes the issue log to dir when
// anything was reported.
func writeIssueLog(out io.Writer, issues *report.Collector, dir, kind string) error {
	s := issues.Summary()
	fmt.Fprintf(out, "Issues: %d skipped, %d warning(s), %d fatal\n", s.Skips, s.Warnings, s.Fatals)
	if s.Total() == 0 {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	name := utils.GenerateOutputFileName("issues_{kind}_{timestamp}_{short}", map[string]string{"kind": kind}, ".log")
	path := filepath.Join(dir, name)
	if err := report.WriteErrorLog(issues.Issues(), path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Issue log written to %s\n", path)
	return nil
}
