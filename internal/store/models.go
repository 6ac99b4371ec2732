package store

import "time"

// Product is a catalog listing. OfferPrice of zero means no active offer.
type Product struct {
	ID            int64     `json:"id"`
	SellerID      string    `json:"sellerId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	OfferPrice    float64   `json:"offerPrice"`
	Images        []string  `json:"images"`
	RatingAverage float64   `json:"ratingAverage"`
	RatingCount   int       `json:"ratingCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CartItem is one (user, product) row; quantity is always positive in storage.
type CartItem struct {
	UserID    string `json:"-"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Promotion is a percent-off code. Codes are stored uppercased. An empty
// AllowedUserIDs slice means the code is open to everyone.
type Promotion struct {
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discountPercent"`
	AllowedUserIDs  []string   `json:"allowedUserIds,omitempty"`
	Active          bool       `json:"active"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Order statuses. Transitions are validated for membership only.
const (
	StatusPlaced         = "PLACED"
	StatusProcessing     = "PROCESSING"
	StatusShipped        = "SHIPPED"
	StatusOutForDelivery = "OUT_FOR_DELIVERY"
	StatusDelivered      = "DELIVERED"
	StatusCancelled      = "CANCELLED"
)

// ValidStatus reports whether s is a member of the order status enum.
func ValidStatus(s string) bool {
	switch s {
	case StatusPlaced, StatusProcessing, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is an immutable order line. Prices are not snapshotted per line;
// display totals are recomputed from current catalog prices.
type OrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Order is a persisted order. AmountSnapshot and DiscountAmount are written
// once at creation. ClientRequestID is unique and makes creation idempotent.
type Order struct {
	ID              int64       `json:"id"`
	UserID          string      `json:"userId"`
	AddressID       int64       `json:"addressId"`
	Items           []OrderItem `json:"items"`
	PromoCode       *string     `json:"promoCode,omitempty"`
	DiscountAmount  int64       `json:"discountAmount"`
	AmountSnapshot  int64       `json:"amountSnapshot"`
	Status          string      `json:"status"`
	ClientRequestID string      `json:"-"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// User is the locally stored profile for an identity-provider subject.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Address is a delivery address owned by a user.
type Address struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Area      string    `json:"area"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"createdAt"`
}

// Review is a product review; one per (product, user).
type Review struct {
	ProductID int64     `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subscriber is a newsletter recipient.
type Subscriber struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// ProductSales aggregates units sold for one product over a window.
type ProductSales struct {
	ProductID int64
	Name      string
	Category  string
	Units     int64
}
