package config

import "time"

const (
	// Assignment
	DefaultWorkloadLimit = 10

	// Listing
	DefaultPageSize       = 20
	MaxPageSize           = 50
	DescriptionPreviewLen = 100

	// Live updates
	HeartbeatInterval = 30 * time.Second
	StaleAfter        = 60 * time.Second

	// Storage
	TxMaxAttempts = 3

	// Tokens issued by the operator CLI
	DefaultTokenTTL = 24 * time.Hour
)

// DefaultCategories seeds a fresh database via `admin seed-categories`.
var DefaultCategories = map[string]string{
	"Infrastructure":    "INFRASTRUCTURE",
	"Education":         "EDUCATION",
	"Revenue":           "REVENUE",
	"Health":            "HEALTH",
	"Water Supply":      "WATER_SUPPLY_SANITATION",
	"Electricity":       "ELECTRICITY_POWER",
	"Transportation":    "TRANSPORTATION",
	"Municipal":         "MUNICIPAL_SERVICES",
	"Police":            "POLICE_SERVICES",
	"Environment":       "ENVIRONMENT",
	"Housing":           "HOUSING_URBAN_DEVELOPMENT",
	"Social Welfare":    "SOCIAL_WELFARE",
	"Public Grievances": "PUBLIC_GRIEVANCES",
}
