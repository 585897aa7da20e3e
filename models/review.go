package models

import "time"

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is a customer's rating of a completed booking.
type Review struct {
	ID           string       `json:"id" bson:"id"`
	ServiceID    string       `json:"serviceId" bson:"serviceId"`
	CustomerID   string       `json:"customerId" bson:"customerId"`
	ProviderID   string       `json:"providerId" bson:"providerId"`
	BookingID    string       `json:"bookingId" bson:"bookingId"`
	Rating       int          `json:"rating" bson:"rating" validate:"min=1,max=5"`
	Text         string       `json:"review" bson:"review" validate:"required,max=500"`
	Images       []string     `json:"images" bson:"images"`
	HelpfulVotes int          `json:"helpfulVotes" bson:"helpfulVotes"`
	Status       ReviewStatus `json:"status" bson:"status" validate:"oneof=pending approved rejected"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// ReviewWithService carries the reviewed service's name and category.
type ReviewWithService struct {
	Review  `bson:",inline"`
	Service *ServiceSummary `json:"service,omitempty" bson:"service,omitempty"`
}

// ReviewPage is one page of a review listing.
type ReviewPage struct {
	Reviews     []ReviewWithService `json:"reviews"`
	TotalPages  int                 `json:"totalPages"`
	CurrentPage int                 `json:"currentPage"`
}

// CreateReviewRequest is the client payload for a new review.
type CreateReviewRequest struct {
	Rating int      `json:"rating" validate:"min=1,max=5"`
	Review string   `json:"review" validate:"required,max=500"`
	Images []string `json:"images" validate:"max=5,dive,url"`
}
