package weblog

// StatusClass is the coarse grouping of an HTTP status code, derived from
// its leading digit.
type StatusClass string

const (
	StatusInformational StatusClass = "Informational"
	StatusSuccess       StatusClass = "Success"
	StatusRedirection   StatusClass = "Redirection"
	StatusClientError   StatusClass = "Client errors"
	StatusServerError   StatusClass = "Server errors"
	// StatusUnknown is returned for codes not starting with '1'..'5'
	// (empty strings, truncated fields, garbage in the export).
	StatusUnknown StatusClass = "Unknown"
)

// ClassifyStatus maps a status code string onto its class by first character.
func ClassifyStatus(code string) StatusClass {
	if code == "" {
		return StatusUnknown
	}
	switch code[0] {
	case '1':
		return StatusInformational
	case '2':
		return StatusSuccess
	case '3':
		return StatusRedirection
	case '4':
		return StatusClientError
	case '5':
		return StatusServerError
	}
	return StatusUnknown
}
