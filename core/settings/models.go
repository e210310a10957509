package settings

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/risingacademy/backend/core"
)

// DocumentID is the key of the settings singleton.
const DocumentID = "site-settings"

type (
	Contact struct {
		Facebook  string `json:"facebook" validate:"omitempty,url"`
		Instagram string `json:"instagram" validate:"omitempty,url"`
		Phone     string `json:"phone" validate:"max=100"`
		Location  string `json:"location" validate:"max=255"`
	}

	// Stats are the four counters displayed on the landing page.
	Stats struct {
		Students             int `json:"students" validate:"min=0"`
		Languages            int `json:"languages" validate:"min=0"`
		ProgrammingLanguages int `json:"programmingLanguages" validate:"min=0"`
		SuccessRate          int `json:"successRate" validate:"min=0,max=100"`
	}

	OfficeClub struct {
		Day         string `json:"day" validate:"max=50"`
		Time        string `json:"time" validate:"max=50"`
		Description string `json:"description" validate:"max=1000"`
	}

	ServiceCategory struct {
		ID            string   `json:"id" validate:"required,max=50"`
		Name          string   `json:"name" validate:"required,max=100"`
		Description   string   `json:"description" validate:"max=500"`
		Icon          string   `json:"icon" validate:"max=50"`
		Color         string   `json:"color" validate:"max=100"`
		Subcategories []string `json:"subcategories" validate:"dive,required,max=100"`
	}

	Services struct {
		Categories []ServiceCategory `json:"categories" validate:"unique=ID,dive"`
	}

	// SiteSettings drives the copy of the public pages.
	SiteSettings struct {
		Contact    Contact    `json:"contact"`
		Stats      Stats      `json:"stats"`
		OfficeClub OfficeClub `json:"officeClub"`
		Services   Services   `json:"services"`
		UpdatedAt  time.Time  `json:"updatedAt"` // UTC; zero for the defaults
	}

	// UpdateSiteSettings is a partial SiteSettings: nil blocks are left untouched,
	// given blocks replace the stored ones wholesale.
	UpdateSiteSettings struct {
		Contact    *Contact    `json:"contact,omitempty" validate:"omitempty"`
		Stats      *Stats      `json:"stats,omitempty" validate:"omitempty"`
		OfficeClub *OfficeClub `json:"officeClub,omitempty" validate:"omitempty"`
		Services   *Services   `json:"services,omitempty" validate:"omitempty"`
	}
)

func (us *UpdateSiteSettings) Clean() {
	if c := us.Contact; c != nil {
		c.Facebook = core.CleanString(c.Facebook)
		c.Instagram = core.CleanString(c.Instagram)
		c.Phone = core.CleanString(c.Phone)
		c.Location = core.CleanString(c.Location)
	}
	if oc := us.OfficeClub; oc != nil {
		oc.Day = core.CleanString(oc.Day)
		oc.Time = core.CleanString(oc.Time)
		oc.Description = core.CleanString(oc.Description)
	}
	if s := us.Services; s != nil {
		for i := range s.Categories {
			cat := &s.Categories[i]
			cat.ID = core.CleanString(cat.ID, true /* lower */)
			cat.Name = core.CleanString(cat.Name)
			cat.Description = core.CleanString(cat.Description)
			for j := range cat.Subcategories {
				cat.Subcategories[j] = core.CleanString(cat.Subcategories[j])
			}
		}
	}
}

func (us *UpdateSiteSettings) Validate(validate *validator.Validate) error {
	us.Clean()
	return validate.Struct(us)
}

func (us UpdateSiteSettings) IsEmpty() bool {
	return us.Contact == nil && us.Stats == nil && us.OfficeClub == nil && us.Services == nil
}

// ApplyTo returns s with the given blocks replaced.
func (us UpdateSiteSettings) ApplyTo(s SiteSettings) SiteSettings {
	if us.Contact != nil {
		s.Contact = *us.Contact
	}
	if us.Stats != nil {
		s.Stats = *us.Stats
	}
	if us.OfficeClub != nil {
		s.OfficeClub = *us.OfficeClub
	}
	if us.Services != nil {
		s.Services = us.Services.Clone()
	}
	return s
}

// Clone returns a deep copy of the categories and their subcategories.
func (svc Services) Clone() Services {
	if svc.Categories == nil {
		return Services{}
	}
	cats := make([]ServiceCategory, len(svc.Categories))
	for i, cat := range svc.Categories {
		if cat.Subcategories != nil {
			cat.Subcategories = append([]string(nil), cat.Subcategories...)
		}
		cats[i] = cat
	}
	return Services{Categories: cats}
}

// Default returns the compiled-in settings served whenever the stored ones cannot be read.
func Default() SiteSettings {
	return SiteSettings{
		Contact: Contact{
			Facebook:  "https://www.facebook.com/risingacademydz/",
			Instagram: "https://www.instagram.com/rising_academy_/?hl=en",
			Phone:     "0670710505 / 0667909055",
			Location:  "ولاية باتنة طريق بسكرة، رود العرايس بناية بن بلاط",
		},
		Stats: Stats{
			Students:             500,
			Languages:            12,
			ProgrammingLanguages: 25,
			SuccessRate:          95,
		},
		OfficeClub: OfficeClub{
			Day:         "MONDAY",
			Time:        "6:00 PM - 9:00 PM",
			Description: "Join us every Monday for collaborative learning, networking, and skill sharing.",
		},
		Services: Services{
			Categories: []ServiceCategory{
				{
					ID:            "languages",
					Name:          "Language Learning",
					Description:   "Master multiple languages with native speakers",
					Icon:          "Globe",
					Color:         "from-blue-500 to-blue-600",
					Subcategories: []string{"English", "French", "Spanish", "German", "Arabic"},
				},
				{
					ID:            "development",
					Name:          "Development",
					Description:   "Learn programming and web development",
					Icon:          "Code2",
					Color:         "from-purple-500 to-purple-600",
					Subcategories: []string{"Web Development", "Cyber Security", "AI", "Programming Fundamentals"},
				},
				{
					ID:            "design",
					Name:          "Graphic Design",
					Description:   "Creative design and visual arts",
					Icon:          "Palette",
					Color:         "from-pink-500 to-pink-600",
					Subcategories: []string{"Adobe Photoshop", "Illustrator", "UI/UX Design", "Branding"},
				},
				{
					ID:            "business",
					Name:          "Business & Finance",
					Description:   "Trading, accounting, and business skills",
					Icon:          "TrendingUp",
					Color:         "from-green-500 to-green-600",
					Subcategories: []string{"Trading", "PC Compta", "PC Paie", "المحاسبة"},
				},
				{
					ID:            "marketing",
					Name:          "Digital Marketing",
					Description:   "Online marketing and social media",
					Icon:          "Megaphone",
					Color:         "from-orange-500 to-orange-600",
					Subcategories: []string{"Social Media Marketing", "SEO", "Content Marketing", "Email Marketing"},
				},
				{
					ID:            "media",
					Name:          "Video Editing",
					Description:   "Video production and editing",
					Icon:          "Video",
					Color:         "from-red-500 to-red-600",
					Subcategories: []string{"Adobe Premiere", "After Effects", "Motion Graphics", "Color Grading"},
				},
				{
					ID:            "it",
					Name:          "Informatique",
					Description:   "Computer science and IT fundamentals",
					Icon:          "Monitor",
					Color:         "from-cyan-500 to-cyan-600",
					Subcategories: []string{"Computer Basics", "Office Suite", "Hardware", "Networking"},
				},
			},
		},
	}
}
