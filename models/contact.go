package models

// ContactRequest, iletişim formu.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate — isim ≥ 2, konu ≥ 5, mesaj ≥ 10 karakter, geçerli e-posta.
func (r *ContactRequest) Validate() error {
	var v validator
	v.minLen("name", r.Name, 2, "validation.nameTooShort")
	v.email("email", r.Email)
	v.minLen("subject", r.Subject, 5, "validation.subjectTooShort")
	v.minLen("message", r.Message, 10, "validation.messageTooShort")
	return v.err()
}
