package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikhilbhutani/pdfchat/internal/plan"
)

func TestValidate(t *testing.T) {
	table := plan.Table("price_pro")
	free, pro := table[0], table[1]
	c := NewController()

	const mb = int64(1) << 20

	tests := []struct {
		name        string
		size        int64
		contentType string
		plan        string
		want        Decision
	}{
		{"10MB pdf on free", 10 * mb, "application/pdf", "free", Decision{false, ReasonTooBig}},
		{"10MB pdf on pro", 10 * mb, "application/pdf", "pro", Decision{true, ReasonOK}},
		{"exactly at free ceiling", 8 * mb, "application/pdf", "free", Decision{true, ReasonOK}},
		{"one byte over free ceiling", 8*mb + 1, "application/pdf", "free", Decision{false, ReasonTooBig}},
		{"over pro ceiling", 33 * mb, "application/pdf", "pro", Decision{false, ReasonTooBig}},
		{"pdf with parameters", mb, "application/pdf; name=a.pdf", "free", Decision{true, ReasonOK}},
		{"word document", mb, "application/msword", "pro", Decision{false, ReasonNotPDF}},
		{"empty content type", mb, "", "pro", Decision{false, ReasonNotPDF}},
		{"garbage content type", mb, ";;;", "pro", Decision{false, ReasonNotPDF}},
		{"zero bytes", 0, "application/pdf", "free", Decision{false, ReasonEmpty}},
		{"negative size", -5, "application/pdf", "free", Decision{false, ReasonEmpty}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := free
			if tt.plan == "pro" {
				p = pro
			}
			assert.Equal(t, tt.want, c.Validate(tt.size, tt.contentType, p))
		})
	}
}

func TestCheckQuota(t *testing.T) {
	free := plan.Table("")[0]
	c := NewController()

	assert.True(t, c.CheckQuota(0, free).Allow)
	assert.True(t, c.CheckQuota(free.MonthlyQuota-1, free).Allow)

	d := c.CheckQuota(free.MonthlyQuota, free)
	assert.False(t, d.Allow)
	assert.Equal(t, ReasonQuotaExceeded, d.Reason)
}
