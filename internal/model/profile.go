// internal/model/profile.go
package model

// Profile is a synthetic person record. It is not persisted on its own; it is
// embedded as the JSON payload of a Submission.
type Profile struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	MiddleName  *string `json:"middle_name,omitempty"`
	Age         int     `json:"age"`
	DateOfBirth string  `json:"date_of_birth"`
	Gender      string  `json:"gender"`

	Addresses    []Address  `json:"addresses"`
	PhoneNumbers []Phone    `json:"phone_numbers"`
	Emails       []string   `json:"emails"`
	Relatives    []string   `json:"relatives"`
	Employment   Employment `json:"employment"`
}

// Address is one of a profile's 1-4 addresses. Type is "current" for the first
// address and "previous" for the rest.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	Type   string `json:"type"`
}

// Phone is a formatted number whose area code matches one of the profile's
// address states.
type Phone struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

// Employment is optional; both fields are nil for the ~25% of profiles
// generated without a job.
type Employment struct {
	Employer *string `json:"employer"`
	Title    *string `json:"title"`
}

// ProfileTemplate constrains profile generation. Zero values mean "pick
// randomly".
type ProfileTemplate struct {
	State          string `json:"state,omitempty"`
	AgeRange       []int  `json:"age_range,omitempty"` // [min, max]
	CountAddresses int    `json:"count_addresses,omitempty"`
	CountPhones    int    `json:"count_phones,omitempty"`
	Gender         string `json:"gender,omitempty"` // "M" or "F"
}
