package wrapper

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ProbeResult summarizes the structure of a PDF file as seen by pdfcpu
type ProbeResult struct {
	PageCount int    `json:"page_count"`
	Version   string `json:"version"`
	Encrypted bool   `json:"encrypted"`
}

// PDFCPUProbe checks that a file is a structurally readable PDF before the
// text engine touches it
type PDFCPUProbe struct {
	config FactoryConfig
}

// NewPDFCPUProbe creates a new pdfcpu-backed probe
func NewPDFCPUProbe(config FactoryConfig) *PDFCPUProbe {
	return &PDFCPUProbe{config: config}
}

// Probe reads the cross-reference table and page tree of the file at path
func (p *PDFCPUProbe) Probe(path string) (*ProbeResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "probe",
			Err:     fmt.Errorf("failed to open file: %w", err),
		}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "probe",
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "probe",
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	result := &ProbeResult{
		PageCount: ctx.PageCount,
		Version:   headerVersion(ctx),
		Encrypted: ctx.Encrypt != nil,
	}

	if result.Encrypted {
		return result, &WrapperError{Library: LibraryPDFCPU, Op: "probe", Err: ErrEncrypted.Err}
	}

	return result, nil
}

// headerVersion returns the version claimed by the file header, if any
func headerVersion(ctx *model.Context) (version string) {
	defer func() {
		if recover() != nil {
			version = ""
		}
	}()
	return ctx.HeaderVersion.String()
}
