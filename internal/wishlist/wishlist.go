package wishlist

import (
	"strings"
	"time"

	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/internal/product"
)

// Collection is the wishlist entries collection name.
const Collection = "wishlist"

// App names the entries carry; each app keeps its account records in
// its own collection.
const (
	AppWedflix  = "wedflix"
	AppMallflix = "mallflix"
)

// Entry is one raw wishlist record: one user wanting one product.
type Entry struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	AppName   string    `json:"appName"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
}

// The entries collection is written by the consumer apps and carries
// their field casing: AppName and created are not this service's to
// rename.
func entryFromDocument(d docstore.Document) Entry {
	return Entry{
		ID:        d.ID,
		ProductID: d.String("product_id"),
		UserID:    d.String("user_id"),
		AppName:   d.String("AppName"),
		Deleted:   d.Bool("deleted"),
		CreatedAt: d.Time("created"),
	}
}

// GroupedItem is one product's aggregated demand: how many distinct
// users want it. Product is nil when the catalog lookup failed or the
// product no longer exists; the row still renders from the counts.
type GroupedItem struct {
	ProductID string           `json:"productId"`
	UserCount int              `json:"userCount"`
	UserIDs   []string         `json:"userIds"`
	Product   *product.Product `json:"product"`
}

// User is one account that wishes for a product, looked up in the
// owning app's account collection.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	AppName string `json:"appName"`
}

// userCollectionFor maps an entry's app name onto the account
// collection holding its users. Matching is case-insensitive; unknown
// apps fall back to the wedflix accounts.
func userCollectionFor(appName string) string {
	if strings.EqualFold(appName, AppMallflix) {
		return "mallflix_users"
	}
	return "wedflix_users"
}
