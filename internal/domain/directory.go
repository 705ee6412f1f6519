package domain

// Directory entities are read-only projections fetched per screen. The
// backend owns them; this client only lists and displays.

type Distributor struct {
	ID           int32  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	ReferCode    string `json:"referCode,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// Company may exist without a sponsoring distributor, in which case
// DistributorID and DistributorName are both nil. The backend sets and
// clears the pair together; Sponsored is the supported way to test it.
type Company struct {
	ID              int32   `json:"id"`
	CompanyName     string  `json:"companyName"`
	Email           string  `json:"email"`
	GSTNumber       string  `json:"gstNumber"`
	MobileNumber    string  `json:"mobileNumber"`
	Address         string  `json:"address"`
	ReferCode       string  `json:"referCode,omitempty"`
	DistributorID   *int32  `json:"distributorId"`
	DistributorName *string `json:"distributorName"`
	TechnicianCount int32   `json:"technicianCount"`
	CreatedAt       string  `json:"createdAt,omitempty"`
}

// Sponsored reports whether the company was registered under a distributor.
func (c *Company) Sponsored() bool {
	return c.DistributorID != nil
}

type Technician struct {
	ID           int32  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	ReferCode    string `json:"referCode,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}
