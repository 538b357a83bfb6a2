// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ValidatePDF checks that the stream is a readable PDF before any API
// credit is spent on it, and returns its page count. The reader is left at
// an unspecified position; callers should seek back before uploading.
func ValidatePDF(rs io.ReadSeeker) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("not a valid PDF: %w", err)
	}
	if ctx.PageCount == 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return ctx.PageCount, nil
}
