// Package profile defines the user details record collected by the form and
// the validation rules applied to it before it reaches the store.
package profile

// Record is a successfully submitted set of user details.
type Record struct {
	FirstName   string   `json:"firstName" yaml:"firstName"`
	LastName    string   `json:"lastName" yaml:"lastName"`
	Email       string   `json:"email" yaml:"email"`
	PhoneNumber string   `json:"phoneNumber" yaml:"phoneNumber"`
	Gender      Gender   `json:"gender" yaml:"gender"`
	DateOfBirth string   `json:"dob" yaml:"dob"`
	TechStack   []string `json:"techStack" yaml:"techStack"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	if r.TechStack != nil {
		out.TechStack = make([]string, len(r.TechStack))
		copy(out.TechStack, r.TechStack)
	}
	return out
}

// Input returns the raw form representation of r.
func (r Record) Input() Input {
	in := Input{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Gender:      string(r.Gender),
		DateOfBirth: r.DateOfBirth,
	}
	in.TechStack = append([]string(nil), r.TechStack...)
	return in
}

// Input is unvalidated user input as entered in the form.
type Input struct {
	FirstName   string   `json:"firstName" yaml:"firstName" validate:"required,alpha_name"`
	LastName    string   `json:"lastName" yaml:"lastName" validate:"required,alpha_name"`
	Email       string   `json:"email" yaml:"email" validate:"required,email_address"`
	PhoneNumber string   `json:"phoneNumber" yaml:"phoneNumber" validate:"required,in_phone"`
	Gender      string   `json:"gender" yaml:"gender" validate:"required,gender"`
	DateOfBirth string   `json:"dob" yaml:"dob" validate:"required"`
	TechStack   []string `json:"techStack" yaml:"techStack" validate:"min=1,dive,required"`
}

// Clone returns a deep copy of in.
func (in Input) Clone() Input {
	out := in
	if in.TechStack != nil {
		out.TechStack = make([]string, len(in.TechStack))
		copy(out.TechStack, in.TechStack)
	}
	return out
}

// Record converts in to a Record. It does not validate; call Validate first.
func (in Input) Record() Record {
	return Record{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Gender:      Gender(in.Gender),
		DateOfBirth: in.DateOfBirth,
		TechStack:   append([]string(nil), in.TechStack...),
	}
}
