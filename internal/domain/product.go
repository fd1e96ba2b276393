package domain

type Product struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price"`
	Discount        int      `json:"discount"`
	DiscountedPrice float64  `json:"discountedPrice"`
	Category        string   `json:"category"`
	Images          []string `json:"images"`
	InStock         bool     `json:"inStock"`
	PostedBy        string   `json:"postedBy,omitempty"`
	PostedDate      string   `json:"postedDate,omitempty"`
	UpdatedBy       string   `json:"updatedBy,omitempty"`
	UpdatedDate     string   `json:"updatedDate,omitempty"`
}

// Category and Banner are both stored by the backend as "settings" entries,
// told apart by SettingFor.
type Category struct {
	ID         string `json:"_id,omitempty"`
	Index      int    `json:"index"`
	Name       string `json:"name"`
	SettingFor string `json:"settingFor,omitempty"`
	PostedBy   string `json:"postedBy,omitempty"`
	ModifiedBy string `json:"modifiedBy,omitempty"`
}

type Banner struct {
	ID         string `json:"_id,omitempty"`
	Index      int    `json:"index"`
	Image      string `json:"image"`
	SettingFor string `json:"settingFor,omitempty"`
	PostedBy   string `json:"postedBy,omitempty"`
	ModifiedBy string `json:"modifiedBy,omitempty"`
}

const (
	SettingCategory = "category"
	SettingBanner   = "banner"
)

type UserRole string

const (
	RoleNone      UserRole = "none"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID    string   `json:"_id,omitempty"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Image string   `json:"image,omitempty"`
	Role  UserRole `json:"role"`
}

func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}
