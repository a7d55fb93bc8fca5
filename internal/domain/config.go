package domain

const (
	// MaxPages is the page budget: documents with more pages are rejected before any page is processed.
	MaxPages = 10

	// NativeDPI is the PDF coordinate space resolution (1 unit = 1/72 inch).
	NativeDPI = 72.0
	// RenderDPI is the raster resolution fed to the OCR engine.
	RenderDPI = 300.0
	// RenderScale is the zoom applied to the native coordinate space, 300/72 ≈ 4.1667.
	RenderScale = RenderDPI / NativeDPI

	// OCRLanguage is the fixed recognition language (Tesseract code).
	OCRLanguage = "eng"
)
