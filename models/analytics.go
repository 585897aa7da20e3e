package models

import "time"

type NewRegistrations struct {
	Providers int `json:"providers" bson:"providers"`
	Customers int `json:"customers" bson:"customers"`
}

type DailyMetrics struct {
	TotalBookings     int              `json:"totalBookings" bson:"totalBookings"`
	CompletedBookings int              `json:"completedBookings" bson:"completedBookings"`
	CancelledBookings int              `json:"cancelledBookings" bson:"cancelledBookings"`
	TotalRevenue      float64          `json:"totalRevenue" bson:"totalRevenue"`
	ActiveProviders   int              `json:"activeProviders" bson:"activeProviders"`
	ActiveCustomers   int              `json:"activeCustomers" bson:"activeCustomers"`
	NewRegistrations  NewRegistrations `json:"newRegistrations" bson:"newRegistrations"`
}

type ServiceMetric struct {
	ServiceID   string  `json:"serviceId" bson:"serviceId"`
	ServiceName string  `json:"serviceName" bson:"serviceName"`
	Bookings    int     `json:"bookings" bson:"bookings"`
	Revenue     float64 `json:"revenue" bson:"revenue"`
}

// Analytics is the snapshot for one calendar day.
type Analytics struct {
	ID             string          `json:"id" bson:"id"`
	Date           time.Time       `json:"date" bson:"date"`
	Metrics        DailyMetrics    `json:"metrics" bson:"metrics"`
	ServiceMetrics []ServiceMetric `json:"serviceMetrics" bson:"serviceMetrics"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// TopService ranks a service by revenue from completed bookings.
type TopService struct {
	ServiceID string  `json:"serviceId" bson:"_id"`
	Name      string  `json:"name" bson:"name"`
	Bookings  int     `json:"bookings" bson:"bookings"`
	Revenue   float64 `json:"revenue" bson:"revenue"`
}

type Trends struct {
	Bookings float64 `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

type DashboardSummary struct {
	Today       *Analytics   `json:"today"`
	Trends      Trends       `json:"trends"`
	TopServices []TopService `json:"topServices"`
}
