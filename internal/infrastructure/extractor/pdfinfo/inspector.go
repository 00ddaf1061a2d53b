package pdfinfo

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

// PageCount parses the cross-reference table only; page content is not read.
func (i *Inspector) PageCount(file domain.File) (pages int, err error) {
	if len(file.Content) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "pdf page count", fmt.Errorf("%s is empty", file.Name))
	}

	// The parser panics on some malformed trailers.
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = fmt.Errorf("parse pdf %s: %v", file.Name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(file.Content), int64(len(file.Content)))
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", file.Name, err)
	}
	return reader.NumPage(), nil
}
