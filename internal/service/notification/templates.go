package notification

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/jwalitptl/booking-api/internal/model"
)

const (
	subjectBooked    = "Επιβεβαίωση ραντεβού"
	subjectCancelled = "Ακύρωση ραντεβού"
	subjectContact   = "Νέο μήνυμα από τη φόρμα επικοινωνίας"

	displayDateLayout = "02/01/2006"
)

type appointmentEmailData struct {
	ClientName string
	Date       string
	Time       string
	Service    string
}

type contactEmailData struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

var bookedTemplate = template.Must(template.New("booked").Parse(`Αγαπητέ/ή {{.ClientName}},

Το ραντεβού σας καταχωρήθηκε.

Ημερομηνία: {{.Date}}
Ώρα: {{.Time}}
Υπηρεσία: {{.Service}}

Σε περίπτωση κωλύματος, παρακαλούμε ενημερώστε μας εγκαίρως.

Με εκτίμηση,
Το γραφείο μας`))

var cancelledTemplate = template.Must(template.New("cancelled").Parse(`Αγαπητέ/ή {{.ClientName}},

Το ραντεβού σας για τις {{.Date}} στις {{.Time}} ({{.Service}}) ακυρώθηκε.

Για νέο ραντεβού μπορείτε να χρησιμοποιήσετε τη σελίδα κρατήσεων.

Με εκτίμηση,
Το γραφείο μας`))

var contactTemplate = template.Must(template.New("contact").Parse(`Νέο μήνυμα από τη φόρμα επικοινωνίας.

Όνομα: {{.Name}}
Email: {{.Email}}
{{- if .Phone}}
Τηλέφωνο: {{.Phone}}
{{- end}}

Μήνυμα:
{{.Message}}`))

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// displayDate turns a wire date (2006-01-02) into the dd/mm/yyyy form
// used in the emails. Unparseable input is shown as-is.
func displayDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(displayDateLayout)
}

// displayTime drops the seconds from a wire time (15:04:05).
func displayTime(value string) string {
	t, err := time.Parse(model.TimeLayout, value)
	if err != nil {
		return value
	}
	return t.Format(model.TimeLayoutShort)
}
