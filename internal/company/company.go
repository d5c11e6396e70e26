package company

import (
	"time"

	"github.com/wedflix/command-center/internal/docstore"
)

// Collection is the companies collection name.
const Collection = "companies"

// Company is one vendor account visible in the admin area.
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Contact     string    `json:"contact,omitempty"`
	Address     string    `json:"address,omitempty"`
	PointPerson string    `json:"pointPerson,omitempty"`
	Status      string    `json:"status,omitempty"`
	OwnerID     string    `json:"ownerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func fromDocument(d docstore.Document) Company {
	return Company{
		ID:          d.ID,
		Name:        d.String("name"),
		Contact:     d.String("contact"),
		Address:     d.String("address"),
		PointPerson: d.String("point_person"),
		Status:      d.String("status"),
		OwnerID:     d.String("owner_id"),
		CreatedAt:   d.Time("created_at"),
	}
}
