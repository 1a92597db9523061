package services

import (
	"house-dashboard/models"
	"house-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

func sampleHouses() []models.House {
	return []models.House{
		{ID: "1", Price: 200000, YearBuilt: 1955, Bedrooms: 3, Bathrooms: 1, SqftLiving: 1180, Condition: 3, Waterfront: 0, View: 0, Lat: 47.51, Long: -122.25},
		{ID: "2", Price: 400000, YearBuilt: 1955, Bedrooms: 4, Bathrooms: 2.25, SqftLiving: 2570, Condition: 4, Waterfront: 0, View: 2, Lat: 47.72, Long: -122.31},
		{ID: "3", Price: 100000, YearBuilt: 1933, Bedrooms: 2, Bathrooms: 1, SqftLiving: 770, Condition: 2, Waterfront: 0, View: 1, Lat: 47.73, Long: -122.23},
		{ID: "4", Price: 1500000, YearBuilt: 2001, Bedrooms: 5, Bathrooms: 3.5, SqftLiving: 4200, Condition: 5, Waterfront: 1, View: 4, Lat: 47.62, Long: -122.21},
		{ID: "5", Price: 300000, YearBuilt: 2001, Bedrooms: 3, Bathrooms: 1.75, SqftLiving: 1900, Condition: 1, Waterfront: 0, View: 3, Lat: 47.40, Long: -122.10},
	}
}

func sampleDataset() *models.Dataset { return models.NewDataset(sampleHouses()) }
