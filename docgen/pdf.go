package docgen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// renderPDF prints a generated LOI page to PDF through headless Chrome.
func renderPDF(htmlPath, pdfPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}

	u, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	var pdf []byte
	if err := rod.Try(func() {
		page := browser.MustPage("file://" + abs)
		page.MustWaitStable()
		pdf = page.MustPDF()
	}); err != nil {
		return fmt.Errorf("failed to print %s to PDF: %w", filepath.Base(htmlPath), err)
	}

	return os.WriteFile(pdfPath, pdf, 0644)
}
