// Package pdfcpu performs structural PDF validation and page counting with pdfcpu.
package pdfcpu

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kailas-cloud/pdfocr/internal/domain"
)

var disableConfigDir sync.Once

// Inspector validates PDF structure before the document is handed to the renderer.
type Inspector struct {
	mode int
}

// NewInspector creates an Inspector with relaxed validation.
// pdfcpu's on-disk config directory is disabled.
func NewInspector() *Inspector {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Inspector{mode: model.ValidationRelaxed}
}

// config returns a fresh configuration; pdfcpu mutates it during a command.
func (i *Inspector) config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = i.mode
	return conf
}

// Inspect validates data and returns its page count.
// Validation failures wrap domain.ErrDecode.
func (i *Inspector) Inspect(ctx context.Context, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("inspect: %w", err)
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("empty input: %w", domain.ErrDecode)
	}

	if err := api.Validate(bytes.NewReader(data), i.config()); err != nil {
		return 0, fmt.Errorf("validate pdf: %v: %w", err, domain.ErrDecode)
	}

	n, err := api.PageCount(bytes.NewReader(data), i.config())
	if err != nil {
		return 0, fmt.Errorf("count pages: %v: %w", err, domain.ErrDecode)
	}
	return n, nil
}
