package acquire

import (
	"context"
	"os/exec"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// validatePDF checks that the file is a structurally parseable PDF and
// returns its page count. Relaxed validation: filings from older form
// generators are frequently not spec-clean but still extractable.
func validatePDF(path string) (int, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(path, cfg); err != nil {
		return 0, err
	}
	return api.PageCountFile(path)
}

// textForPage extracts the native text layer of a single page via pdftotext.
// Layout mode preserves the form's column structure, which the label-based
// field rules depend on.
func textForPage(ctx context.Context, pdfPath string, page int) (string, error) {
	cmd := exec.CommandContext(ctx,
		"pdftotext",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-layout",
		pdfPath,
		"-",
	)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
