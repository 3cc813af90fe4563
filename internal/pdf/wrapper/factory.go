package wrapper

import (
	"fmt"
)

// PDFLibraryFactory creates PDF library instances with unified interface
type PDFLibraryFactory struct {
	defaultLibrary LibraryType
	config         FactoryConfig
}

// FactoryConfig contains configuration options for the factory
type FactoryConfig struct {
	// PreferredLibrary is the library used when LibraryAuto is requested
	PreferredLibrary LibraryType `json:"preferred_library"`

	// MaxFileSize rejects larger input files before parsing (in bytes, 0 = no limit)
	MaxFileSize int64 `json:"max_file_size"`

	// DebugMode enables debug logging for library operations
	DebugMode bool `json:"debug_mode"`
}

// NewPDFLibraryFactory creates a new factory with default configuration
func NewPDFLibraryFactory() *PDFLibraryFactory {
	return &PDFLibraryFactory{
		defaultLibrary: LibraryAuto,
		config: FactoryConfig{
			PreferredLibrary: LibraryLedongthuc,
			MaxFileSize:      100 * 1024 * 1024, // 100MB
			DebugMode:        false,
		},
	}
}

// NewPDFLibraryFactoryWithConfig creates a factory with custom configuration
func NewPDFLibraryFactoryWithConfig(config FactoryConfig) *PDFLibraryFactory {
	if config.PreferredLibrary == "" {
		config.PreferredLibrary = LibraryLedongthuc
	}
	return &PDFLibraryFactory{
		defaultLibrary: LibraryAuto,
		config:         config,
	}
}

// Create instantiates a text extraction library of the specified type
func (f *PDFLibraryFactory) Create(libType LibraryType) (Library, error) {
	switch libType {
	case LibraryLedongthuc:
		return NewLedongthucLibrary(f.config), nil
	case LibraryAuto:
		if f.config.PreferredLibrary == LibraryAuto {
			return nil, &WrapperError{Library: libType, Op: "create", Err: fmt.Errorf("auto cannot prefer itself")}
		}
		return f.Create(f.config.PreferredLibrary)
	case LibraryPDFCPU:
		// pdfcpu has no text extraction; it only backs the probe
		return nil, &WrapperError{
			Library: libType,
			Op:      "create",
			Err:     fmt.Errorf("%w: pdfcpu cannot extract text", ErrUnsupportedLibrary.Err),
		}
	default:
		return nil, &WrapperError{
			Library: libType,
			Op:      "create",
			Err:     fmt.Errorf("unknown library type: %s", libType),
		}
	}
}

// CreateDefault instantiates the default library
func (f *PDFLibraryFactory) CreateDefault() (Library, error) {
	return f.Create(f.defaultLibrary)
}

// CreateProbe instantiates the structural probe
func (f *PDFLibraryFactory) CreateProbe() *PDFCPUProbe {
	return NewPDFCPUProbe(f.config)
}

// GetDefaultLibrary returns the current default library type
func (f *PDFLibraryFactory) GetDefaultLibrary() LibraryType {
	return f.defaultLibrary
}

// GetConfig returns the current factory configuration
func (f *PDFLibraryFactory) GetConfig() FactoryConfig {
	return f.config
}
