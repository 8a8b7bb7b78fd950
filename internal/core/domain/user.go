package domain

const PlaceholderImage = "https://via.placeholder.com/40"

// UserRecord is a single row of the user directory. Records are replaced
// wholesale on update, never merged field by field.
type UserRecord struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	City   string `json:"city"`
	Phone  string `json:"phone"`
	Img    string `json:"img"`
	Status bool   `json:"status"`
}

func (u *UserRecord) IsActive() bool {
	return u.Status
}

func (u *UserRecord) StatusLabel() string {
	if u.Status {
		return "Active"
	}

	return "Inactive"
}

// DisplayImage falls back to a placeholder when the record has no image.
func (u *UserRecord) DisplayImage() string {
	if u.Img == "" {
		return PlaceholderImage
	}

	return u.Img
}

// UserPatch carries the fields a caller wants to change on a draft.
// Nil fields are left alone.
type UserPatch struct {
	Name   *string
	Email  *string
	City   *string
	Phone  *string
	Img    *string
	Status *bool
}

func (p UserPatch) ApplyTo(u UserRecord) UserRecord {
	if p.Name != nil {
		u.Name = *p.Name
	}

	if p.Email != nil {
		u.Email = *p.Email
	}

	if p.City != nil {
		u.City = *p.City
	}

	if p.Phone != nil {
		u.Phone = *p.Phone
	}

	if p.Img != nil {
		u.Img = *p.Img
	}

	if p.Status != nil {
		u.Status = *p.Status
	}

	return u
}

// SampleUsers is the directory content the UI ships with.
func SampleUsers() []UserRecord {
	return []UserRecord{
		{ID: 1, Name: "Farrukh Karimov", Email: "farrukh@example.com", City: "Dushanbe", Phone: "+992 900 11 22 33", Status: true},
		{ID: 2, Name: "Madina Rahimova", Email: "madina@example.com", City: "Khujand", Phone: "+992 918 44 55 66", Status: false},
		{ID: 3, Name: "Sorbon Nazarov", Email: "sorbon@example.com", City: "Kulob", Phone: "+992 935 77 88 99", Status: true},
		{ID: 4, Name: "Nilufar Saidova", Email: "nilufar@example.com", City: "Istaravshan", Phone: "+992 927 10 20 30", Status: true},
	}
}
