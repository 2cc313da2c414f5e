package render

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
)

// Converter is the external program used for SVG to PDF conversion.
const Converter = "rsvg-convert"

// ErrConverterMissing is returned when Converter is not on PATH.
var ErrConverterMissing = errors.New(Converter + " not found (install librsvg: brew install librsvg, apt install librsvg2-bin)")

// ToPDF converts a rendered lineage SVG to PDF with rsvg-convert. The
// conversion stops when ctx is done.
//
// A missing converter is reported as UNAVAILABLE so the HTTP layer answers
// 503 instead of blaming the request.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	if len(bytes.TrimSpace(svg)) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "pdf: empty svg")
	}
	path, err := exec.LookPath(Converter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnavailable, ErrConverterMissing, "pdf export")
	}

	cmd := exec.CommandContext(ctx, path, "-f", FormatPDF)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, apperrors.New(apperrors.ErrCodeInternal, "%s: %s", Converter, msg)
	}
	return out.Bytes(), nil
}
