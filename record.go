package pinexport

// Record is one exported row, keyed by the pin link.
// The count fields hold the digits shown on the card, "0" when absent.
type Record struct {
	Link   string `json:"link"`
	Views  string `json:"views"`
	Pins   string `json:"pins"`
	Clicks string `json:"clicks"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.Link == "" {
		return Errorf(EINVALID, "record link required")
	}
	return nil
}

// CountFunc receives the number of distinct records collected so far.
type CountFunc func(count int)
