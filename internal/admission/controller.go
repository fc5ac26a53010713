// Package admission decides whether an upload may start. It runs before any
// credential is issued and never touches storage.
package admission

import (
	"mime"
	"strings"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

const AcceptedContentType = "application/pdf"

const (
	ReasonOK            = "Good to upload"
	ReasonNotPDF        = "File must be a PDF"
	ReasonEmpty         = "File is empty"
	ReasonTooBig        = "File size too big"
	ReasonQuotaExceeded = "Monthly document quota reached"
)

type Decision struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason"`
}

func allow() Decision             { return Decision{Allow: true, Reason: ReasonOK} }
func deny(reason string) Decision { return Decision{Allow: false, Reason: reason} }

type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

// Validate checks a client-declared size and content type against the plan's
// ceiling. Anything that is not exactly a PDF is rejected.
func (c *Controller) Validate(sizeBytes int64, contentType string, p models.Plan) Decision {
	if !isPDF(contentType) {
		return deny(ReasonNotPDF)
	}
	if sizeBytes <= 0 {
		return deny(ReasonEmpty)
	}
	if sizeBytes > p.MaxFileBytes {
		return deny(ReasonTooBig)
	}
	return allow()
}

// CheckQuota compares the documents the owner registered this month with the
// plan's monthly allowance.
func (c *Controller) CheckQuota(used int, p models.Plan) Decision {
	if used >= p.MonthlyQuota {
		return deny(ReasonQuotaExceeded)
	}
	return allow()
}

func isPDF(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	if err != nil {
		return false
	}
	return mediaType == AcceptedContentType
}
