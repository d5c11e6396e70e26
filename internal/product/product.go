package product

import (
	"time"

	"github.com/wedflix/command-center/internal/docstore"
)

// Collection is the catalog collection name.
const Collection = "products"

// Defaults applied when a catalog document is missing display fields.
const (
	DefaultName     = "Unknown Product"
	DefaultImage    = "/placeholder.jpg"
	DefaultLocation = "Unknown Location"
)

// Product is one catalog entry, normalized for display: every field is
// populated even when the source document is sparse.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Priority  int       `json:"priority"`
	Location  string    `json:"location"`
	AppName   string    `json:"appName,omitempty"`
	CompanyID string    `json:"companyId,omitempty"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
}

// firstMediaURL digs out media[0].url; media arrives as a BSON/JSON
// array of maps.
func firstMediaURL(d docstore.Document) string {
	media, ok := d.Fields["media"].([]any)
	if !ok || len(media) == 0 {
		return ""
	}
	first, ok := media[0].(map[string]any)
	if !ok {
		return ""
	}
	url, _ := first["url"].(string)
	return url
}

// rentalLocation digs out specs_rental.location.
func rentalLocation(d docstore.Document) string {
	specs, ok := d.Fields["specs_rental"].(map[string]any)
	if !ok {
		return ""
	}
	loc, _ := specs["location"].(string)
	return loc
}

func fromDocument(d docstore.Document) Product {
	p := Product{
		ID:        d.ID,
		Name:      d.String("name"),
		Image:     firstMediaURL(d),
		Priority:  d.Int("priority"),
		Location:  rentalLocation(d),
		AppName:   d.String("app_name"),
		CompanyID: d.String("company_id"),
		Deleted:   d.Bool("deleted"),
		CreatedAt: d.Time("created_at"),
	}
	if p.Name == "" {
		p.Name = DefaultName
	}
	if p.Image == "" {
		p.Image = DefaultImage
	}
	if p.Location == "" {
		p.Location = DefaultLocation
	}
	return p
}
