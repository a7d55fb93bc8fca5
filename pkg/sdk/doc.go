// Package pdfocr extracts text from PDF documents in-process.
//
// Every page contributes its embedded text layer followed by the text an OCR
// engine recognizes on a 300 dpi rendering of the page. Both sources are kept
// even when they overlap, so a PDF with a real text layer over a scanned
// background yields that text twice.
//
//	client, _ := pdfocr.New(pdfocr.WithTesseract())
//	defer client.Close()
//
//	res, err := client.ExtractURL(ctx, "https://example.com/invoice.pdf")
//	if errors.Is(err, pdfocr.ErrTooManyPages) {
//	    // documents are limited to 10 pages
//	}
//	fmt.Print(res.Text)
//
// A custom engine can be plugged in with WithRecognizer.
package pdfocr
