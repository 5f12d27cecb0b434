package domain

// HomeSelection is one positioned product in the homepage Discover strip.
type HomeSelection struct {
	ProductID string `db:"product_id" json:"product_id"`
	Position  int    `db:"position" json:"position"`
}

// InstagramPost carries two independent (flag, position) pairs, one per surface.
type InstagramPost struct {
	ID              string `db:"id" json:"id"`
	Image           string `db:"image" json:"image"`
	Link            string `db:"link" json:"link"`
	Position        int    `db:"position" json:"position"`
	ShowOnDesktop   bool   `db:"show_on_desktop" json:"show_on_desktop"`
	DesktopPosition *int   `db:"desktop_position" json:"desktop_position"`
	ShowOnMobile    bool   `db:"show_on_mobile" json:"show_on_mobile"`
	MobilePosition  *int   `db:"mobile_position" json:"mobile_position"`
	CreatedAt       string `db:"created_at" json:"created_at"`
}
