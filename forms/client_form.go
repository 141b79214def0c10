package forms

import "trainertrack/models"

// ClientForm is the editable representation of a client. Every field is
// free-form text so a half-typed value can be held and echoed back to the
// user instead of being rejected mid-edit.
type ClientForm struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
}

// FieldEdit is a single keystroke-level change to one named form field.
type FieldEdit struct {
	Field string
	Value string
}

// IsValid reports whether the form may be saved. Validity is advisory: an
// invalid form is still a legal value, it just must not reach the store.
func (f ClientForm) IsValid() bool {
	return IsNonBlank(f.FirstName) &&
		IsNonBlank(f.LastName) &&
		IsNonBlank(f.Email) &&
		IsValidEmail(f.Email) &&
		IsValidDate(f.DateOfBirth)
}

// Apply returns a copy of the form with the edited field replaced. Unknown
// field names leave the form unchanged.
func (f ClientForm) Apply(edit FieldEdit) ClientForm {
	switch edit.Field {
	case "firstName":
		f.FirstName = edit.Value
	case "lastName":
		f.LastName = edit.Value
	case "email":
		f.Email = edit.Value
	case "dateOfBirth":
		f.DateOfBirth = edit.Value
	}
	return f
}

// Client converts the form into the entity it would persist as. The id
// passes through unchanged; an id of zero means "not yet stored".
func (f ClientForm) Client() models.Client {
	c := models.Client{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		DateOfBirth: f.DateOfBirth,
	}
	c.ID = f.ID
	return c
}

// ClientToForm builds the editable representation of a stored client.
func ClientToForm(c models.Client) ClientForm {
	return ClientForm{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		DateOfBirth: c.DateOfBirth,
	}
}
