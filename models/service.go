package models

import "time"

type ServiceStatus string

const (
	ServiceActive    ServiceStatus = "active"
	ServiceInactive  ServiceStatus = "inactive"
	ServiceSuspended ServiceStatus = "suspended"
)

// GeoLocation is a GeoJSON point with a human readable address.
type GeoLocation struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" validate:"len=2,dive,gte=-180,lte=180"` // [lng, lat]
	Address     string    `json:"address" bson:"address" validate:"required"`
}

type TimeSlot struct {
	Start string `json:"start" bson:"start" validate:"required"`
	End   string `json:"end" bson:"end" validate:"required"`
}

type DayAvailability struct {
	Day   string     `json:"day" bson:"day" validate:"oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Slots []TimeSlot `json:"slots" bson:"slots" validate:"dive"`
}

// Service is an offering listed by a provider.
type Service struct {
	ID             string            `json:"id" bson:"id"`
	ProviderID     string            `json:"providerId" bson:"providerId"`
	Name           string            `json:"name" bson:"name" validate:"required"`
	Description    string            `json:"description" bson:"description" validate:"required"`
	Category       string            `json:"category" bson:"category" validate:"required"`
	Price          float64           `json:"price" bson:"price" validate:"gte=0"`
	Duration       int               `json:"duration" bson:"duration" validate:"gte=15"`
	Images         []string          `json:"images" bson:"images"`
	Location       GeoLocation       `json:"location" bson:"location"`
	Availability   []DayAvailability `json:"availability" bson:"availability" validate:"dive"`
	Tags           []string          `json:"tags" bson:"tags"`
	Status         ServiceStatus     `json:"status" bson:"status" validate:"oneof=active inactive suspended"`
	AverageRating  float64           `json:"averageRating" bson:"averageRating" validate:"gte=0,lte=5"`
	ReviewCount    int               `json:"reviewCount" bson:"reviewCount" validate:"gte=0"`
	SearchKeywords []string          `json:"searchKeywords,omitempty" bson:"searchKeywords"`
	CreatedAt      time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// ServiceSummary is the slice of a service joined onto reviews.
type ServiceSummary struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Category string `json:"category" bson:"category"`
}

// ServiceFilter narrows catalogue listings. Zero values are ignored.
type ServiceFilter struct {
	Category   string        `form:"category"`
	Status     ServiceStatus `form:"status"`
	ProviderID string        `form:"providerId"`
	Query      string        `form:"q"`
	Lat        *float64      `form:"lat"`
	Lng        *float64      `form:"lng"`
	RadiusKm   float64       `form:"radiusKm"`
}

// ServiceInput is the client payload for a new service.
type ServiceInput struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Price        float64           `json:"price"`
	Duration     int               `json:"duration"`
	Images       []string          `json:"images"`
	Location     GeoLocation       `json:"location"`
	Availability []DayAvailability `json:"availability"`
	Tags         []string          `json:"tags"`
	Status       ServiceStatus     `json:"status"`
}

// ServiceUpdate is a partial update; nil fields are left unchanged.
type ServiceUpdate struct {
	Name         *string           `json:"name"`
	Description  *string           `json:"description"`
	Category     *string           `json:"category"`
	Price        *float64          `json:"price"`
	Duration     *int              `json:"duration"`
	Images       []string          `json:"images"`
	Location     *GeoLocation      `json:"location"`
	Availability []DayAvailability `json:"availability"`
	Tags         []string          `json:"tags"`
	Status       *ServiceStatus    `json:"status"`
}
