// Package export renders reports as spreadsheet and PDF downloads.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format is a download format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ErrUnknownFormat is returned for formats other than xlsx and pdf.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates a format name. Empty means xlsx.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename names a download of report generated at t.
func Filename(report string, f Format, t time.Time) string {
	return fmt.Sprintf("%s-%s.%s", report, t.UTC().Format("20060102-150405"), f)
}

var mismatchHeaders = []string{
	"Placed On", "Order ID", "Site", "Price Without Tax", "Tax & Shipping",
	"Amount Paid", "Difference", "CC / PayPal", "GC / Reward Card", "Payment Types",
}

var summaryHeaders = []string{"Payment Method", "US", "CA", "TOTAL"}

const timestampLayout = "2006-01-02 15:04:05"
