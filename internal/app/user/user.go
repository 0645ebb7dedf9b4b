/*
Package user holds the directory view of an account.

Accounts are created and approved by the external identity service; this
server only reads directory rows to resolve display names and departments.
*/
package user

// User is a directory row for one account.
type User struct {

	// UUID is the stable opaque identifier, never reused.
	UUID string `json:"uuid"`

	// Name is the display name.
	Name string `json:"name"`

	// Username is the login name, shown in the directory listing.
	Username string `json:"username"`

	// EmployeeID is the company-internal staff number.
	EmployeeID string `json:"employee_id,omitempty"`

	// Position and Department describe where the account sits in the org.
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`

	// Email is the contact address.
	Email string `json:"email,omitempty"`

	// IsApproved marks accounts cleared by the identity service. Only
	// approved accounts appear in listings.
	IsApproved bool `json:"-"`
}
