package backend

// Privilege is the result of the elevation probe.
type Privilege struct {
	Elevated bool   `json:"elevated"`
	Detail   string `json:"detail"`
}

// Label is the short form shown in headers.
func (p Privilege) Label() string {
	if p.Elevated {
		return "elevated"
	}
	return "limited"
}
